package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/stub"
)

const petstoreDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "servers": [{"url": "https://api.example.com/petstore"}],
  "paths": {
    "/pets": {
      "get": {
        "responses": {
          "200": {
            "description": "List pets",
            "content": {
              "application/json": {
                "example": [{"id": 1, "name": "Rex"}]
              }
            }
          }
        }
      },
      "post": {
        "responses": {
          "201": {"description": "Pet created"}
        }
      }
    },
    "/pets/{petId}": {
      "get": {
        "responses": {
          "200": {"description": "One pet"}
        }
      }
    }
  }
}`

func TestImportOpenAPI_ServesImportedStubs(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)

	resp := ts.adminDo(t, http.MethodPost, "/import/openapi", token, petstoreDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result admin.ImportResponse
	decodeData(t, resp, &result)
	assert.Equal(t, "Petstore", result.Project.Name)
	assert.Equal(t, "/petstore", result.Project.BasePath, "base path comes from the server URL")
	assert.Equal(t, 3, result.Endpoints)

	// The documented example is served verbatim.
	listResp := ts.getStub(t, "/petstore/pets")
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	assert.JSONEq(t, `[{"id":1,"name":"Rex"}]`, readBody(t, listResp))

	// An operation without an example gets a placeholder body.
	createResp, err := http.Post(ts.baseURL+"/petstore/pets", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, createResp.StatusCode)
	assert.JSONEq(t, `{"id":1,"created":true}`, readBody(t, createResp))

	// Templated segments are kept literally; the endpoint exists but only
	// a literal request would hit it.
	endpointsResp := ts.adminDo(t, http.MethodGet, "/endpoints?projectId="+result.Project.ID, token, "")
	require.Equal(t, http.StatusOK, endpointsResp.StatusCode)
	var endpoints []*stub.Endpoint
	decodeData(t, endpointsResp, &endpoints)
	paths := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "/pets/{petId}")
}

func TestImportOpenAPI_BasePathOverride(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)

	resp := ts.adminDo(t, http.MethodPost, "/import/openapi?basePath=/zoo/", token, petstoreDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result admin.ImportResponse
	decodeData(t, resp, &result)
	assert.Equal(t, "/zoo", result.Project.BasePath)

	listResp := ts.getStub(t, "/zoo/pets")
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	listResp.Body.Close()
}

func TestImportOpenAPI_Swagger2Conversion(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)

	doc := `{
  "swagger": "2.0",
  "info": {"title": "Legacy", "version": "1.0"},
  "host": "legacy.example.com",
  "basePath": "/v1",
  "schemes": ["https"],
  "paths": {
    "/things": {
      "get": {
        "responses": {
          "200": {"description": "ok"}
        }
      }
    }
  }
}`
	resp := ts.adminDo(t, http.MethodPost, "/import/openapi", token, doc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result admin.ImportResponse
	decodeData(t, resp, &result)
	assert.Equal(t, "Legacy", result.Project.Name)
	assert.Equal(t, "/v1", result.Project.BasePath)
	assert.Equal(t, 1, result.Endpoints)

	thingsResp := ts.getStub(t, "/v1/things")
	assert.Equal(t, http.StatusOK, thingsResp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, thingsResp))
}

func TestImportOpenAPI_RejectsBadDocuments(t *testing.T) {
	ts := startServer(t)
	token := ts.login(t)

	resp := ts.adminDo(t, http.MethodPost, "/import/openapi", token, `{"not":"openapi"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "not an OpenAPI 3.x or Swagger 2.0 document", decodeError(t, resp))

	resp = ts.adminDo(t, http.MethodPost, "/import/openapi", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Request body is empty", decodeError(t, resp))
}
