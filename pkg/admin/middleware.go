// Middleware chain for the admin API.

package admin

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for request context values.
type contextKey string

// subjectKey carries the authenticated username through the request.
const subjectKey contextKey = "subject"

// subjectFromContext returns the username the request's token was issued
// to, or "" when the request was not token-authenticated.
func subjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

// withMiddleware layers the chain: logging outermost, then security
// headers, then CORS, with bearer auth closest to the routes.
func (a *API) withMiddleware(next http.Handler) http.Handler {
	handler := a.authMiddleware(next)
	handler = a.corsMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = a.loggingMiddleware(handler)
	return handler
}

// loggingMiddleware logs every admin request with its outcome and tags
// the response with a request id.
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		a.log.Info("admin request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration", time.Since(start),
		)
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture the status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Unwrap supports http.ResponseController.
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

// securityHeadersMiddleware adds security headers to all responses.
// These headers help protect against common web vulnerabilities like
// clickjacking, XSS attacks, MIME type sniffing, and information leakage.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// corsMiddleware applies the static CORS policy from the server
// configuration. An origin outside the allow list gets no CORS headers
// but the request still runs; the browser enforces the block. Preflight
// requests are answered directly and never reach auth or the routes.
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// The response depends on the Origin header even when no CORS
		// headers are set, so caches must key on it.
		w.Header().Add("Vary", "Origin")

		if allowOrigin := a.cors.GetAllowOriginValue(origin); allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(a.cors.AllowMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(a.cors.AllowHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(a.cors.MaxAge))
			if allowOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware enforces bearer-token auth on every route except login,
// health, and preflights. The authEnabled setting is read from the store
// on each request so a settings update takes effect immediately; if the
// read fails the check stays on.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		settings, err := a.store.Settings().Get(r.Context())
		if err != nil {
			a.log.Error("failed to read settings for auth check", "error", err)
		} else if !settings.AuthEnabled {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, ErrMsgMissingAuth)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, ErrMsgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAuthExempt reports whether the prefix-relative path skips the token
// check.
func isAuthExempt(path string) bool {
	return path == "/login" || path == "/health"
}
