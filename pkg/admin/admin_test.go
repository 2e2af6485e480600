package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/store/memory"
	"github.com/getstubd/stubd/pkg/stub"
)

const (
	testUsername = "admin"
	testPassword = "swordfish"
)

// testEnvelope mirrors the wire envelope with the data left raw so each
// test can decode its own payload type.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// newTestAPI builds an API over a fresh in-memory store.
func newTestAPI(t *testing.T, opts ...Option) (*API, http.Handler) {
	t.Helper()

	st := memory.New()
	require.NoError(t, st.Open(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultServerConfiguration()
	cfg.AdminUsername = testUsername
	cfg.AdminPassword = testPassword
	cfg.AuthSecret = "test-signing-secret"

	api := NewAPI(cfg, st, opts...)
	return api, api.Handler()
}

// doRequest performs a request against the handler, attaching the token
// as a bearer header when given.
func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// newOriginRequest builds a request carrying an Origin header.
func newOriginRequest(method, path, origin string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	return req
}

// serve runs the request through the handler and returns the recorder.
func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// loginToken logs in with the test credentials and returns the token.
func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doRequest(t, handler, http.MethodPost, "/login", "",
		`{"username":"`+testUsername+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var resp LoginResponse
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// decodeData unwraps a success envelope into the given payload pointer.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, "expected a success envelope, got error %q", env.Error)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// decodeError unwraps a failure envelope and returns its error message.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success, "expected an error envelope")
	return env.Error
}

func TestLogin(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doRequest(t, handler, http.MethodPost, "/login", "",
		`{"username":"admin","password":"swordfish"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	decodeData(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 86400, resp.ExpiresIn)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, handler := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`},
		{"wrong username", `{"username":"root","password":"swordfish"}`},
		{"empty body fields", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, ErrMsgInvalidLogin, decodeError(t, rec))
		})
	}
}

func TestLogin_MalformedJSON(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doRequest(t, handler, http.MethodPost, "/login", "", `{"username": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrMsgInvalidJSON, decodeError(t, rec))
}

func TestAuthStatus(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler)

	rec := doRequest(t, handler, http.MethodGet, "/auth/status", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthStatusResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, testUsername, resp.Username)
}

func TestAuthStatus_MissingHeader(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doRequest(t, handler, http.MethodGet, "/auth/status", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing or invalid authorization header", decodeError(t, rec))
}

func TestAuthStatus_BadToken(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doRequest(t, handler, http.MethodGet, "/auth/status", "not-a-real-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeError(t, rec))
}

func TestHealth_NoAuthRequired(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doRequest(t, handler, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
}

// fakeStats is a canned StatsSource.
type fakeStats struct {
	uptime   int
	requests int64
	running  bool
}

func (f *fakeStats) Uptime() int         { return f.uptime }
func (f *fakeStats) RequestCount() int64 { return f.requests }
func (f *fakeStats) IsRunning() bool     { return f.running }

func TestStats(t *testing.T) {
	api, handler := newTestAPI(t, WithStats(&fakeStats{uptime: 42, requests: 7, running: true}))
	token := loginToken(t, handler)

	// Two projects, one endpoint.
	ctx := context.Background()
	p1 := &stub.Project{ID: "p1", Name: "One", BasePath: "/one"}
	p2 := &stub.Project{ID: "p2", Name: "Two", BasePath: "/two"}
	require.NoError(t, api.store.Projects().Create(ctx, p1))
	require.NoError(t, api.store.Projects().Create(ctx, p2))
	require.NoError(t, api.store.Endpoints().Create(ctx, &stub.Endpoint{
		ID:        "e1",
		ProjectID: "p1",
		Path:      "/x",
		Method:    "GET",
		Enabled:   true,
		Response:  &stub.ResponseSpec{Status: 200},
	}))

	rec := doRequest(t, handler, http.MethodGet, "/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	decodeData(t, rec, &resp)
	assert.True(t, resp.Running)
	assert.Equal(t, 42, resp.Uptime)
	assert.Equal(t, int64(7), resp.RequestCount)
	assert.Equal(t, 2, resp.Projects)
	assert.Equal(t, 1, resp.Endpoints)
}
