// Package integration exercises a running stubd server end to end: a
// real listener on an ephemeral port, the management API mounted under
// the admin prefix, and stub traffic on the same listener.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/engine"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/store/memory"
	"github.com/getstubd/stubd/pkg/stub"
)

const (
	testUsername = "admin"
	testPassword = "integration-secret"
)

// testServer is a running stubd instance plus the handles tests need.
type testServer struct {
	srv      *engine.Server
	api      *admin.API
	store    store.Store
	baseURL  string
	adminURL string

	stopOnce sync.Once
}

// envelope mirrors the admin API wire envelope with the data left raw
// so each test can decode its own payload type.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// startServer brings up a server over a fresh in-memory store on an
// ephemeral port and registers shutdown with the test cleanup.
func startServer(t *testing.T) *testServer {
	t.Helper()

	st := memory.New()
	require.NoError(t, st.Open(context.Background()))
	return startServerWithStore(t, st)
}

// startServerWithStore brings up a server over an already-open store.
// The wiring matches the serve command: engine first, then the admin
// API with the engine's stats and request log, mounted before Start.
func startServerWithStore(t *testing.T, st store.Store) *testServer {
	t.Helper()

	cfg := config.DefaultServerConfiguration()
	cfg.Port = 0
	cfg.AdminUsername = testUsername
	cfg.AdminPassword = testPassword
	cfg.AuthSecret = "integration-signing-secret"

	srv := engine.NewServer(cfg, engine.WithStore(st))
	api := admin.NewAPI(cfg, st,
		admin.WithStats(srv),
		admin.WithRequestLog(srv.RequestLog()),
	)
	srv.SetAdminHandler(api.Handler())

	require.NoError(t, srv.Start())

	ts := &testServer{
		srv:      srv,
		api:      api,
		store:    st,
		baseURL:  fmt.Sprintf("http://localhost:%d", srv.Port()),
		adminURL: fmt.Sprintf("http://localhost:%d%s", srv.Port(), cfg.AdminPrefix),
	}
	t.Cleanup(ts.stop)
	return ts
}

// stop shuts the server down and closes the store. Safe to call more
// than once; tests that restart against the same data call it early.
func (ts *testServer) stop() {
	ts.stopOnce.Do(func() {
		_ = ts.srv.Stop()
		_ = ts.store.Close()
	})
}

// login authenticates with the test credentials and returns the token.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()

	resp := ts.adminDo(t, http.MethodPost, "/login", "",
		`{"username":"`+testUsername+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result admin.LoginResponse
	decodeData(t, resp, &result)
	require.NotEmpty(t, result.Token)
	return result.Token
}

// adminDo performs a request against the management API. path is
// relative to the admin prefix; token, when given, is sent as a bearer
// header.
func (ts *testServer) adminDo(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.adminURL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeData unwraps a success envelope into the given payload pointer
// and closes the response body.
func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success, "expected a success envelope, got error %q", env.Error)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// decodeError unwraps a failure envelope, closes the body, and returns
// the error message.
func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.False(t, env.Success, "expected an error envelope")
	return env.Error
}

// createProject makes a project through the management API.
func (ts *testServer) createProject(t *testing.T, token, name, basePath string) *stub.Project {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"basePath":%q}`, name, basePath)
	resp := ts.adminDo(t, http.MethodPost, "/projects", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var project stub.Project
	decodeData(t, resp, &project)
	return &project
}

// createEndpoint makes an endpoint through the management API.
func (ts *testServer) createEndpoint(t *testing.T, token string, input admin.EndpointInput) *stub.Endpoint {
	t.Helper()

	body, err := json.Marshal(input)
	require.NoError(t, err)
	resp := ts.adminDo(t, http.MethodPost, "/endpoints", token, string(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var endpoint stub.Endpoint
	decodeData(t, resp, &endpoint)
	return &endpoint
}

// getStub performs a stub-traffic request against the server.
func (ts *testServer) getStub(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := http.Get(ts.baseURL + path)
	require.NoError(t, err)
	return resp
}

// readBody reads and closes the response body.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// waitForRequestCount polls until the engine has served at least n
// requests, guarding against slow CI schedulers.
func waitForRequestCount(t *testing.T, srv *engine.Server, n int64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.RequestCount() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server saw %d requests, want at least %d", srv.RequestCount(), n)
}
