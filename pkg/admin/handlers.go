// HTTP handlers for the admin API: envelope writers, liveness, stats,
// and the session endpoints.

package admin

import (
	"encoding/json"
	"net/http"
)

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := a.Uptime()
	if a.stats != nil {
		uptime = a.stats.Uptime()
	}
	writeData(w, http.StatusOK, HealthResponse{Status: "ok", Uptime: uptime})
}

// handleStats handles GET /stats.
func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := a.store.Projects().List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "list projects"))
		return
	}
	endpoints, err := a.store.Endpoints().List(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "list endpoints"))
		return
	}

	stats := StatsResponse{
		Uptime:    a.Uptime(),
		Projects:  len(projects),
		Endpoints: len(endpoints),
	}
	if a.stats != nil {
		stats.Running = a.stats.IsRunning()
		stats.Uptime = a.stats.Uptime()
		stats.RequestCount = a.stats.RequestCount()
	}

	writeData(w, http.StatusOK, stats)
}

// handleLogin handles POST /login. Bad credentials answer 401 without
// revealing which field was wrong.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	if !a.creds.Match(req.Username, req.Password) {
		a.log.Warn("failed login attempt", "username", req.Username)
		writeError(w, http.StatusUnauthorized, ErrMsgInvalidLogin)
		return
	}

	token, err := a.tokens.Issue(req.Username, a.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "issue token"))
		return
	}

	writeData(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int(a.tokenTTL.Seconds()),
	})
}

// handleAuthStatus handles GET /auth/status. With auth disabled requests
// carry no token subject, so the configured admin username is reported.
func (a *API) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	username := subjectFromContext(r.Context())
	if username == "" {
		username = a.creds.Username
	}
	writeData(w, http.StatusOK, AuthStatusResponse{Username: username})
}
