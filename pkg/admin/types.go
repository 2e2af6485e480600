// Request and response payloads for the admin API.

package admin

import (
	"github.com/getstubd/stubd/pkg/requestlog"
	"github.com/getstubd/stubd/pkg/stub"
)

// envelope is the wire shape of every admin response body.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// AuthStatusResponse reports who the current session belongs to.
type AuthStatusResponse struct {
	Username string `json:"username"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime int    `json:"uptime"`
}

// StatsResponse is the stats payload.
type StatsResponse struct {
	Running      bool  `json:"running"`
	Uptime       int   `json:"uptime"`
	RequestCount int64 `json:"requestCount"`
	Projects     int   `json:"projects"`
	Endpoints    int   `json:"endpoints"`
}

// ProjectInput is the create-project payload.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BasePath    string `json:"basePath"`
}

// ProjectPatch is the update-project payload. Nil fields keep their
// stored value.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	BasePath    *string `json:"basePath,omitempty"`
}

// EndpointInput is the create-endpoint payload.
type EndpointInput struct {
	ProjectID string             `json:"projectId"`
	Path      string             `json:"path"`
	Method    string             `json:"method"`
	Enabled   *bool              `json:"enabled,omitempty"`
	Response  *stub.ResponseSpec `json:"response"`
}

// EndpointPatch is the update-endpoint payload. Nil fields keep their
// stored value; a supplied response replaces the stored one in full.
type EndpointPatch struct {
	ProjectID *string            `json:"projectId,omitempty"`
	Path      *string            `json:"path,omitempty"`
	Method    *string            `json:"method,omitempty"`
	Enabled   *bool              `json:"enabled,omitempty"`
	Response  *stub.ResponseSpec `json:"response,omitempty"`
}

// ImportResponse summarizes an OpenAPI import.
type ImportResponse struct {
	Project   *stub.Project `json:"project"`
	Endpoints int           `json:"endpoints"`
}

// RequestLogResponse is the request-history payload.
type RequestLogResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}
