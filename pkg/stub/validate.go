package stub

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// validMethods is the allowed method set, built from Methods.
var validMethods = func() map[string]bool {
	m := make(map[string]bool, len(Methods))
	for _, method := range Methods {
		m[method] = true
	}
	return m
}()

// headerNameRegex validates HTTP header names (RFC 7230).
var headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+\-.^_\x60|~]+$`)

// NormalizeMethod uppercases a method string so stored endpoints always
// carry the canonical form the resolver compares against.
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// NormalizeBasePath strips trailing slashes so prefix matching and
// relative-path computation agree. The root base path stays "/".
func NormalizeBasePath(basePath string) string {
	trimmed := strings.TrimRight(basePath, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// Validate checks if the project is valid.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if p.BasePath == "" {
		return &ValidationError{Field: "basePath", Message: "basePath is required"}
	}
	if !strings.HasPrefix(p.BasePath, "/") {
		return &ValidationError{Field: "basePath", Message: "basePath must start with /"}
	}
	return nil
}

// Validate checks if the endpoint is valid. ProjectID existence is checked
// by the caller against the store, not here.
func (e *Endpoint) Validate() error {
	if e.ProjectID == "" {
		return &ValidationError{Field: "projectId", Message: "projectId is required"}
	}
	if e.Path == "" {
		return &ValidationError{Field: "path", Message: "path is required"}
	}
	if !strings.HasPrefix(e.Path, "/") {
		return &ValidationError{Field: "path", Message: "path must start with /"}
	}
	if !validMethods[e.Method] {
		return &ValidationError{Field: "method", Message: fmt.Sprintf("method must be one of %s", strings.Join(Methods, ", "))}
	}
	if e.Response == nil {
		return &ValidationError{Field: "response", Message: "response is required"}
	}
	return e.Response.Validate()
}

// Validate checks if the response spec is valid.
func (r *ResponseSpec) Validate() error {
	if r.Status < 100 || r.Status > 599 {
		return &ValidationError{Field: "response.status", Message: "status must be between 100 and 599"}
	}
	if r.DelayMs < 0 {
		return &ValidationError{Field: "response.delay", Message: "delay must not be negative"}
	}
	for name := range r.Headers {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{Field: "response.headers", Message: fmt.Sprintf("invalid header name: %q", name)}
		}
	}
	if len(r.Body) > 0 && !json.Valid(r.Body) {
		return &ValidationError{Field: "response.body", Message: "body must be valid JSON"}
	}
	return nil
}

// Validate checks if the settings are valid.
func (s *Settings) Validate() error {
	for name := range s.DefaultHeaders {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{Field: "defaultHeaders", Message: fmt.Sprintf("invalid header name: %q", name)}
		}
	}
	for _, m := range s.CORSMethods {
		if !validMethods[NormalizeMethod(m)] {
			return &ValidationError{Field: "corsMethods", Message: fmt.Sprintf("invalid method: %q", m)}
		}
	}
	return nil
}
