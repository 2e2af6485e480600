package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/stub"
)

// seedTraffic creates one project with two endpoints and sends a fixed
// mix of stub requests: two GET hits, one POST hit, and one miss.
func seedTraffic(t *testing.T, ts *testServer, token string) (project *stub.Project, getEndpoint *stub.Endpoint) {
	t.Helper()

	project = ts.createProject(t, token, "Traffic", "/traffic")
	getEndpoint = ts.createEndpoint(t, token, admin.EndpointInput{
		ProjectID: project.ID,
		Path:      "/items",
		Method:    "GET",
		Response:  &stub.ResponseSpec{Status: 200, Body: json.RawMessage(`[]`)},
	})
	ts.createEndpoint(t, token, admin.EndpointInput{
		ProjectID: project.ID,
		Path:      "/items",
		Method:    "POST",
		Response:  &stub.ResponseSpec{Status: 201, Body: json.RawMessage(`{"id":1}`)},
	})

	for _, path := range []string{"/traffic/items", "/traffic/items"} {
		resp := ts.getStub(t, path)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	resp, err := http.Post(ts.baseURL+"/traffic/items", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	missResp := ts.getStub(t, "/traffic/missing")
	require.Equal(t, http.StatusNotFound, missResp.StatusCode)
	missResp.Body.Close()

	return project, getEndpoint
}

func TestRequestLog_RecordsTraffic(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)
	project, getEndpoint := seedTraffic(t, ts, token)

	resp := ts.adminDo(t, http.MethodGet, "/requests", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs admin.RequestLogResponse
	decodeData(t, resp, &logs)

	require.Equal(t, 4, logs.Total, "two GET hits, one POST hit, one miss")
	require.Len(t, logs.Requests, 4)

	// Newest first: the miss is the most recent entry.
	newest := logs.Requests[0]
	assert.Equal(t, "/traffic/missing", newest.Path)
	assert.Equal(t, http.StatusNotFound, newest.ResponseStatus)
	assert.Empty(t, newest.EndpointID, "a miss records no endpoint")

	oldest := logs.Requests[3]
	assert.Equal(t, "/traffic/items", oldest.Path)
	assert.Equal(t, project.ID, oldest.ProjectID)
	assert.Equal(t, getEndpoint.ID, oldest.EndpointID)
}

func TestRequestLog_Filters(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)
	project, getEndpoint := seedTraffic(t, ts, token)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"by method", "?method=POST", 1},
		{"by status", "?status=404", 1},
		{"by project", "?projectId=" + project.ID, 3},
		{"by endpoint", "?endpointId=" + getEndpoint.ID, 2},
		{"by path prefix", "?path=/traffic/items", 3},
		{"limit", "?limit=2", 2},
		{"limit and offset", "?limit=2&offset=3", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.adminDo(t, http.MethodGet, "/requests"+tt.query, token, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var logs admin.RequestLogResponse
			decodeData(t, resp, &logs)
			assert.Len(t, logs.Requests, tt.count)
			assert.Equal(t, 4, logs.Total, "total always reports the full log")
		})
	}
}

func TestRequestLog_Clear(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)
	seedTraffic(t, ts, token)

	clearResp := ts.adminDo(t, http.MethodDelete, "/requests", token, "")
	require.Equal(t, http.StatusNoContent, clearResp.StatusCode)
	clearResp.Body.Close()

	resp := ts.adminDo(t, http.MethodGet, "/requests", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs admin.RequestLogResponse
	decodeData(t, resp, &logs)
	assert.Zero(t, logs.Total)
	assert.Empty(t, logs.Requests)
}
