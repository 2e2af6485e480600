// Route registration for the admin API.

package admin

import "net/http"

// registerRoutes wires every admin route onto the mux. Paths are
// prefix-relative; the engine server strips the admin prefix before
// requests arrive here.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Liveness and stats
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /stats", a.handleStats)

	// Session
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("GET /auth/status", a.handleAuthStatus)

	// Projects
	mux.HandleFunc("GET /projects", a.handleListProjects)
	mux.HandleFunc("POST /projects", a.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", a.handleGetProject)
	mux.HandleFunc("PUT /projects/{id}", a.handleUpdateProject)
	mux.HandleFunc("DELETE /projects/{id}", a.handleDeleteProject)

	// Endpoints
	mux.HandleFunc("GET /endpoints", a.handleListEndpoints)
	mux.HandleFunc("POST /endpoints", a.handleCreateEndpoint)
	mux.HandleFunc("GET /endpoints/{id}", a.handleGetEndpoint)
	mux.HandleFunc("PUT /endpoints/{id}", a.handleUpdateEndpoint)
	mux.HandleFunc("DELETE /endpoints/{id}", a.handleDeleteEndpoint)

	// Settings
	mux.HandleFunc("GET /settings", a.handleGetSettings)
	mux.HandleFunc("PUT /settings", a.handleUpdateSettings)

	// Request history
	mux.HandleFunc("GET /requests", a.handleListRequests)
	mux.HandleFunc("DELETE /requests", a.handleClearRequests)

	// Import
	mux.HandleFunc("POST /import/openapi", a.handleImportOpenAPI)
}
