// Core HTTP request handler for the stub engine.

package engine

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/getstubd/stubd/pkg/httputil"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/requestlog"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// Handler serves stub traffic. Each request is resolved against the
// stored projects and endpoints; the matched endpoint's configured
// response is written back, or a structured 404 when nothing matches.
type Handler struct {
	store    store.Store
	resolver *Resolver
	requests *requestlog.Log
	log      *slog.Logger
}

// NewHandler creates a new Handler reading from the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{
		store:    st,
		resolver: NewResolver(st),
		log:      logging.Nop(),
	}
}

// SetRequestLog sets the request history log. When nil, requests are not
// recorded.
func (h *Handler) SetRequestLog(l *requestlog.Log) {
	h.requests = l
}

// SetLogger sets the operational logger for error/warning messages.
func (h *Handler) SetLogger(log *slog.Logger) {
	if log != nil {
		h.log = log
	} else {
		h.log = logging.Nop()
	}
}

// ServeHTTP implements the http.Handler interface.
// Note: CORS is handled by the DynamicCORS wrapper, not in this handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	settings, err := h.store.Settings().Get(r.Context())
	if err != nil {
		h.log.Error("failed to load settings", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "store_error", "Settings lookup failed")
		h.logRequest(startTime, r, nil, http.StatusInternalServerError)
		return
	}

	match, err := h.resolver.Resolve(r.Context(), r.Method, r.URL.Path)
	if err != nil {
		h.log.Error("endpoint resolution failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "store_error", "Stub lookup failed")
		h.logRequest(startTime, r, nil, http.StatusInternalServerError)
		return
	}

	if match == nil {
		h.log.Debug("no stub matched", "method", r.Method, "path", r.URL.Path)
		h.writeNoMatch(w, r, settings)
		h.logRequest(startTime, r, nil, http.StatusNotFound)
		return
	}

	resp := match.Endpoint.Response

	h.log.Debug("request matched",
		"method", r.Method,
		"path", r.URL.Path,
		"project_id", match.Project.ID,
		"endpoint_id", match.Endpoint.ID,
	)

	// Apply the configured delay as a timer wait so concurrent requests
	// keep flowing; bail out if the client goes away first.
	if resp.DelayMs > 0 {
		if !sleepContext(r.Context(), time.Duration(resp.DelayMs)*time.Millisecond) {
			h.log.Debug("client disconnected during delay", "path", r.URL.Path)
			h.logRequest(startTime, r, match, 0)
			return
		}
	}

	// Default headers first, endpoint headers override same-named ones.
	for name, value := range settings.DefaultHeaders {
		w.Header().Set(name, value)
	}
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}

	h.logRequest(startTime, r, match, resp.Status)
}

// writeNoMatch writes the 404 response for requests no endpoint claims.
// Default headers still apply so callers see consistent decoration.
func (h *Handler) writeNoMatch(w http.ResponseWriter, r *http.Request, settings *stub.Settings) {
	for name, value := range settings.DefaultHeaders {
		w.Header().Set(name, value)
	}
	httputil.WriteNoMatch(w, r.Method, r.URL.Path)
}

// logRequest records the request in the history log.
func (h *Handler) logRequest(startTime time.Time, r *http.Request, match *Match, statusCode int) {
	if h.requests == nil {
		return
	}
	entry := &requestlog.Entry{
		Timestamp:      startTime,
		Method:         r.Method,
		Path:           r.URL.Path,
		QueryString:    r.URL.RawQuery,
		RemoteAddr:     r.RemoteAddr,
		ResponseStatus: statusCode,
		DurationMs:     time.Since(startTime).Milliseconds(),
	}
	if match != nil {
		entry.ProjectID = match.Project.ID
		entry.EndpointID = match.Endpoint.ID
	}
	h.requests.Add(entry)
}

// sleepContext waits for d or until ctx is done, reporting whether the
// full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
