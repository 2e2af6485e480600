package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/store"
)

const importDoc = `openapi: 3.0.3
info:
  title: Widgets API
  version: "1.0"
servers:
  - url: https://api.example.com/widgets
paths:
  /list:
    get:
      responses:
        '200':
          description: OK
          content:
            application/json:
              example:
                widgets: []
    post:
      responses:
        '201':
          description: Created
`

func TestImportOpenAPI(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler)

	rec := doRequest(t, handler, http.MethodPost, "/import/openapi", token, importDoc)
	require.Equal(t, http.StatusCreated, rec.Code, "import failed: %s", rec.Body.String())

	var resp ImportResponse
	decodeData(t, rec, &resp)
	require.NotNil(t, resp.Project)
	assert.NotEmpty(t, resp.Project.ID)
	assert.Equal(t, "Widgets API", resp.Project.Name)
	assert.Equal(t, "/widgets", resp.Project.BasePath)
	assert.Equal(t, 2, resp.Endpoints)

	// The records landed in the store.
	endpoints, err := api.store.Endpoints().List(context.Background(), &store.EndpointFilter{ProjectID: resp.Project.ID})
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "/list", endpoints[0].Path)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.JSONEq(t, `{"widgets":[]}`, string(endpoints[0].Response.Body))
}

func TestImportOpenAPI_BasePathOverride(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler)

	rec := doRequest(t, handler, http.MethodPost, "/import/openapi?basePath=/custom/", token, importDoc)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ImportResponse
	decodeData(t, rec, &resp)
	require.NotNil(t, resp.Project)
	assert.Equal(t, "/custom", resp.Project.BasePath)
}

func TestImportOpenAPI_NotASpec(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler)

	rec := doRequest(t, handler, http.MethodPost, "/import/openapi", token, `{"hello":"world"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "not an OpenAPI")
}

func TestImportOpenAPI_EmptyBody(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler)

	rec := doRequest(t, handler, http.MethodPost, "/import/openapi", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body is empty", decodeError(t, rec))
}
