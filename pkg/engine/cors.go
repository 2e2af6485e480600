// CORS enforcement for stub traffic.

package engine

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/getstubd/stubd/pkg/httputil"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// preflightMaxAge is the Access-Control-Max-Age value in seconds.
const preflightMaxAge = 86400

// DynamicCORS wraps the stub handler with CORS handling driven by the
// stored Settings. Unlike the management API's fixed policy, the allowed
// origins are re-read from the store on every request, and a request from
// an origin not in the list is rejected with 403 before it can reach
// endpoint resolution.
type DynamicCORS struct {
	handler http.Handler
	store   store.Store
	log     *slog.Logger
}

// NewDynamicCORS creates the middleware around handler.
func NewDynamicCORS(handler http.Handler, st store.Store) *DynamicCORS {
	return &DynamicCORS{
		handler: handler,
		store:   st,
		log:     logging.Nop(),
	}
}

// SetLogger sets the operational logger.
func (m *DynamicCORS) SetLogger(log *slog.Logger) {
	if log != nil {
		m.log = log
	}
}

// ServeHTTP implements the http.Handler interface.
func (m *DynamicCORS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	settings, err := m.store.Settings().Get(r.Context())
	if err != nil {
		m.log.Error("failed to load settings for CORS check", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "store_error", "Settings lookup failed")
		return
	}

	origin := r.Header.Get("Origin")
	if origin != "" {
		if !settings.OriginAllowed(origin) {
			m.log.Debug("origin rejected", "origin", origin, "path", r.URL.Path)
			httputil.WriteError(w, http.StatusForbidden, "origin_not_allowed", "Origin "+origin+" is not allowed")
			return
		}
		m.setCORSHeaders(w, settings, origin)
	}

	// Preflight never reaches endpoint resolution.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m.handler.ServeHTTP(w, r)
}

// setCORSHeaders emits the CORS response headers for an allowed origin.
// A wildcard-only allowance answers with "*"; an origin that is literally
// listed is echoed back and marked credentialed.
func (m *DynamicCORS) setCORSHeaders(w http.ResponseWriter, settings *stub.Settings, origin string) {
	listed := false
	for _, allowed := range settings.CORSOrigins {
		if allowed == origin {
			listed = true
			break
		}
	}

	if listed {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	if len(settings.CORSMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(settings.CORSMethods, ", "))
	}
	if len(settings.CORSHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(settings.CORSHeaders, ", "))
	}
	w.Header().Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))
}
