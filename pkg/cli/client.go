package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/getstubd/stubd/internal/cliconfig"
	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/requestlog"
	"github.com/getstubd/stubd/pkg/stub"
)

// Client provides methods for communicating with the stubd admin API.
type Client interface {
	// Login exchanges credentials for a session token.
	Login(username, password string) (*admin.LoginResponse, error)
	// AuthStatus reports who the current session belongs to.
	AuthStatus() (*admin.AuthStatusResponse, error)
	// Health checks if the server is running.
	Health() (*admin.HealthResponse, error)
	// Stats returns server statistics.
	Stats() (*admin.StatsResponse, error)

	// ListProjects returns all projects in creation order.
	ListProjects() ([]*stub.Project, error)
	// GetProject returns a specific project by ID.
	GetProject(id string) (*stub.Project, error)
	// CreateProject creates a new project.
	CreateProject(input *admin.ProjectInput) (*stub.Project, error)
	// UpdateProject applies a partial update to a project.
	UpdateProject(id string, patch *admin.ProjectPatch) (*stub.Project, error)
	// DeleteProject deletes a project and all its endpoints.
	DeleteProject(id string) error

	// ListEndpoints returns endpoints, optionally filtered by project.
	ListEndpoints(projectID string) ([]*stub.Endpoint, error)
	// GetEndpoint returns a specific endpoint by ID.
	GetEndpoint(id string) (*stub.Endpoint, error)
	// CreateEndpoint creates a new endpoint.
	CreateEndpoint(input *admin.EndpointInput) (*stub.Endpoint, error)
	// UpdateEndpoint applies a partial update to an endpoint.
	UpdateEndpoint(id string, patch *admin.EndpointPatch) (*stub.Endpoint, error)
	// DeleteEndpoint deletes an endpoint by ID.
	DeleteEndpoint(id string) error

	// GetSettings returns the global settings.
	GetSettings() (*stub.Settings, error)
	// UpdateSettings applies a partial update to the global settings.
	UpdateSettings(patch *stub.SettingsPatch) (*stub.Settings, error)

	// GetLogs returns request history entries with optional filtering.
	GetLogs(filter *requestlog.Filter) (*admin.RequestLogResponse, error)
	// ClearLogs deletes all request history entries.
	ClearLogs() error

	// ImportOpenAPI creates a project from an OpenAPI document. An empty
	// basePath lets the server derive one from the document.
	ImportOpenAPI(doc []byte, basePath string) (*admin.ImportResponse, error)
}

// APIError represents an error response from the admin API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether the error is a 404 from the API.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// apiClient implements Client using HTTP.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// ClientOption configures an admin API client.
type ClientOption func(*apiClient)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *apiClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets the session token for authentication.
func WithToken(token string) ClientOption {
	return func(c *apiClient) {
		c.token = token
	}
}

// NewClient creates a new admin API client. The baseURL is the mounted
// admin API base (e.g. "http://localhost:4780/_admin").
func NewClient(baseURL string, opts ...ClientOption) Client {
	c := &apiClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithAuth creates a client that carries the saved session
// token when one exists. This is the standard constructor for CLI
// commands; a missing token is not an error here, the server rejects
// unauthenticated calls itself.
func NewClientWithAuth(baseURL string, opts ...ClientOption) Client {
	if token, err := cliconfig.LoadToken(); err == nil && token != "" {
		opts = append([]ClientOption{WithToken(token)}, opts...)
	}
	return NewClient(baseURL, opts...)
}

// Login exchanges credentials for a session token.
func (c *apiClient) Login(username, password string) (*admin.LoginResponse, error) {
	body, err := json.Marshal(admin.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.post("/login", body)
	if err != nil {
		return nil, err
	}
	var out admin.LoginResponse
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthStatus reports who the current session belongs to.
func (c *apiClient) AuthStatus() (*admin.AuthStatusResponse, error) {
	resp, err := c.get("/auth/status")
	if err != nil {
		return nil, err
	}
	var out admin.AuthStatusResponse
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks if the server is running.
func (c *apiClient) Health() (*admin.HealthResponse, error) {
	resp, err := c.get("/health")
	if err != nil {
		return nil, err
	}
	var out admin.HealthResponse
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns server statistics.
func (c *apiClient) Stats() (*admin.StatsResponse, error) {
	resp, err := c.get("/stats")
	if err != nil {
		return nil, err
	}
	var out admin.StatsResponse
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns all projects.
func (c *apiClient) ListProjects() ([]*stub.Project, error) {
	resp, err := c.get("/projects")
	if err != nil {
		return nil, err
	}
	var out []*stub.Project
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns a specific project by ID.
func (c *apiClient) GetProject(id string) (*stub.Project, error) {
	resp, err := c.get("/projects/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var out stub.Project
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a new project.
func (c *apiClient) CreateProject(input *admin.ProjectInput) (*stub.Project, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}

	resp, err := c.post("/projects", body)
	if err != nil {
		return nil, err
	}
	var out stub.Project
	if err := c.decode(resp, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies a partial update to a project.
func (c *apiClient) UpdateProject(id string, patch *admin.ProjectPatch) (*stub.Project, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project patch: %w", err)
	}

	resp, err := c.put("/projects/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	var out stub.Project
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and all its endpoints.
func (c *apiClient) DeleteProject(id string) error {
	resp, err := c.delete("/projects/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	return c.decode(resp, http.StatusNoContent, nil)
}

// ListEndpoints returns endpoints, optionally filtered by project.
func (c *apiClient) ListEndpoints(projectID string) ([]*stub.Endpoint, error) {
	path := "/endpoints"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}

	resp, err := c.get(path)
	if err != nil {
		return nil, err
	}
	var out []*stub.Endpoint
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEndpoint returns a specific endpoint by ID.
func (c *apiClient) GetEndpoint(id string) (*stub.Endpoint, error) {
	resp, err := c.get("/endpoints/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var out stub.Endpoint
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEndpoint creates a new endpoint.
func (c *apiClient) CreateEndpoint(input *admin.EndpointInput) (*stub.Endpoint, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode endpoint: %w", err)
	}

	resp, err := c.post("/endpoints", body)
	if err != nil {
		return nil, err
	}
	var out stub.Endpoint
	if err := c.decode(resp, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEndpoint applies a partial update to an endpoint.
func (c *apiClient) UpdateEndpoint(id string, patch *admin.EndpointPatch) (*stub.Endpoint, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode endpoint patch: %w", err)
	}

	resp, err := c.put("/endpoints/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	var out stub.Endpoint
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEndpoint deletes an endpoint by ID.
func (c *apiClient) DeleteEndpoint(id string) error {
	resp, err := c.delete("/endpoints/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	return c.decode(resp, http.StatusNoContent, nil)
}

// GetSettings returns the global settings.
func (c *apiClient) GetSettings() (*stub.Settings, error) {
	resp, err := c.get("/settings")
	if err != nil {
		return nil, err
	}
	var out stub.Settings
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings applies a partial update to the global settings.
func (c *apiClient) UpdateSettings(patch *stub.SettingsPatch) (*stub.Settings, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings patch: %w", err)
	}

	resp, err := c.put("/settings", body)
	if err != nil {
		return nil, err
	}
	var out stub.Settings
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLogs returns request history entries with optional filtering.
func (c *apiClient) GetLogs(filter *requestlog.Filter) (*admin.RequestLogResponse, error) {
	path := "/requests"
	if q := logQuery(filter); q != "" {
		path += "?" + q
	}

	resp, err := c.get(path)
	if err != nil {
		return nil, err
	}
	var out admin.RequestLogResponse
	if err := c.decode(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearLogs deletes all request history entries.
func (c *apiClient) ClearLogs() error {
	resp, err := c.delete("/requests")
	if err != nil {
		return err
	}
	return c.decode(resp, http.StatusNoContent, nil)
}

// ImportOpenAPI creates a project from an OpenAPI document.
func (c *apiClient) ImportOpenAPI(doc []byte, basePath string) (*admin.ImportResponse, error) {
	path := "/import/openapi"
	if basePath != "" {
		path += "?basePath=" + url.QueryEscape(basePath)
	}

	resp, err := c.post(path, doc)
	if err != nil {
		return nil, err
	}
	var out admin.ImportResponse
	if err := c.decode(resp, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// logQuery encodes a request log filter as URL query parameters.
func logQuery(filter *requestlog.Filter) string {
	if filter == nil {
		return ""
	}
	q := url.Values{}
	if filter.ProjectID != "" {
		q.Set("projectId", filter.ProjectID)
	}
	if filter.EndpointID != "" {
		q.Set("endpointId", filter.EndpointID)
	}
	if filter.Method != "" {
		q.Set("method", filter.Method)
	}
	if filter.Path != "" {
		q.Set("path", filter.Path)
	}
	if filter.StatusCode != 0 {
		q.Set("status", strconv.Itoa(filter.StatusCode))
	}
	if filter.Limit != 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset != 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	return q.Encode()
}

// get performs an HTTP GET request.
func (c *apiClient) get(path string) (*http.Response, error) {
	return c.doRequest(http.MethodGet, path, nil)
}

// post performs an HTTP POST request.
func (c *apiClient) post(path string, body []byte) (*http.Response, error) {
	return c.doRequest(http.MethodPost, path, body)
}

// put performs an HTTP PUT request.
func (c *apiClient) put(path string, body []byte) (*http.Response, error) {
	return c.doRequest(http.MethodPut, path, body)
}

// delete performs an HTTP DELETE request.
func (c *apiClient) delete(path string) (*http.Response, error) {
	return c.doRequest(http.MethodDelete, path, nil)
}

// doRequest performs an HTTP request against the admin API.
func (c *apiClient) doRequest(method, path string, body []byte) (*http.Response, error) {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			StatusCode: 0,
			ErrorCode:  "connection_error",
			Message:    fmt.Sprintf("cannot connect to admin API at %s: %v", c.baseURL, err),
		}
	}
	return resp, nil
}

// decode consumes a response. When the status matches want it unwraps
// the envelope data payload into v (v may be nil for bodyless
// responses); anything else becomes an *APIError.
func (c *apiClient) decode(resp *http.Response, want int, v any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return c.parseError(resp)
	}
	if v == nil {
		return nil
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !env.Success {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  "unexpected_error",
			Message:    env.Error,
		}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// parseError parses an error response from the API.
func (c *apiClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Error,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "unknown_error",
		Message:    fmt.Sprintf("server returned status %d: %s", resp.StatusCode, string(body)),
	}
}

// FormatConnectionError returns a user-friendly message for connection
// failures, with a hint to start the server.
func FormatConnectionError(err error) string {
	if apiErr, ok := err.(*APIError); ok && apiErr.ErrorCode == "connection_error" {
		return fmt.Sprintf(`%s

Suggestions:
  - Start the server: stubd serve
  - Check that the server is listening on the expected port
  - Override the admin URL with --admin-url or STUBD_ADMIN_URL`, apiErr.Message)
	}
	return err.Error()
}

// clientError rewrites connection failures into their user-friendly
// form and passes every other client error through.
func clientError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == "connection_error" {
		return errors.New(FormatConnectionError(apiErr))
	}
	return err
}
