// Error handling utilities for the admin API.
// This file provides error sanitization to prevent information leakage.

package admin

import (
	"errors"
	"log/slog"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// Safe error messages for client responses.
// These messages are generic enough to not leak internal details.
const (
	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgOperationFailed is returned for generic operation failures.
	ErrMsgOperationFailed = "Operation failed"

	// ErrMsgValidationFailed is returned for validation errors that carry
	// no client-safe detail of their own.
	ErrMsgValidationFailed = "Request validation failed"

	// ErrMsgNotFound is returned when a record is not found.
	ErrMsgNotFound = "Resource not found"

	// ErrMsgConflict is returned for duplicate record conflicts.
	ErrMsgConflict = "Resource already exists"

	// ErrMsgMissingAuth is returned when the Authorization header is
	// absent or not a bearer token.
	ErrMsgMissingAuth = "Missing or invalid authorization header"

	// ErrMsgInvalidToken is returned when a bearer token fails
	// verification for any reason, expiry included.
	ErrMsgInvalidToken = "Invalid or expired token"

	// ErrMsgInvalidLogin is returned for bad login credentials.
	ErrMsgInvalidLogin = "Invalid username or password"
)

// sanitizeError returns a safe error message for client responses.
// The full error is logged server-side for debugging, but only a
// generic message is returned to prevent information leakage.
func sanitizeError(err error, log *slog.Logger, operation string, details ...any) string {
	if log != nil {
		args := []any{"operation", operation, "error", err}
		args = append(args, details...)
		log.Error("operation failed", args...)
	}

	if errors.Is(err, store.ErrNotFound) {
		return ErrMsgNotFound
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrMsgConflict
	}

	return ErrMsgOperationFailed
}

// sanitizeValidationError returns a client-facing message for validation
// errors. Field-scoped validation errors already carry a curated message
// naming the field and the rule, so those pass through; anything else
// collapses to the generic message.
func sanitizeValidationError(err error, log *slog.Logger) string {
	if log != nil {
		log.Warn("validation failed", "error", err)
	}
	var verr *stub.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return ErrMsgValidationFailed
}

// sanitizeJSONError returns a safe error message for JSON parsing errors.
func sanitizeJSONError(err error, log *slog.Logger) string {
	if log != nil {
		log.Debug("JSON parsing failed", "error", err)
	}
	return ErrMsgInvalidJSON
}
