// Endpoint CRUD handlers.

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// handleListEndpoints handles GET /endpoints. A projectId query
// parameter narrows the list to one project.
func (a *API) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	var filter *store.EndpointFilter
	if projectID := r.URL.Query().Get("projectId"); projectID != "" {
		filter = &store.EndpointFilter{ProjectID: projectID}
	}

	endpoints, err := a.store.Endpoints().List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "list endpoints"))
		return
	}
	writeData(w, http.StatusOK, endpoints)
}

// handleGetEndpoint handles GET /endpoints/{id}.
func (a *API) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	endpoint, err := a.store.Endpoints().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Endpoint not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get endpoint", "endpointID", id))
		return
	}
	writeData(w, http.StatusOK, endpoint)
}

// handleCreateEndpoint handles POST /endpoints. A projectId naming no
// existing project is a validation failure, answered 400; the 404 on
// /endpoints/{id} is reserved for missing endpoints.
func (a *API) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var input EndpointInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	ctx := r.Context()
	if err := a.requireProject(ctx, input.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "projectId does not reference an existing project")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "check project", "projectID", input.ProjectID))
		return
	}

	now := time.Now().UTC()
	endpoint := &stub.Endpoint{
		ID:        uuid.NewString(),
		ProjectID: input.ProjectID,
		Path:      input.Path,
		Method:    stub.NormalizeMethod(input.Method),
		Response:  input.Response,
		Enabled:   input.Enabled == nil || *input.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := endpoint.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	if err := a.store.Endpoints().Create(ctx, endpoint); err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "create endpoint", "endpointID", endpoint.ID))
		return
	}

	a.log.Info("endpoint created",
		"endpointID", endpoint.ID,
		"projectID", endpoint.ProjectID,
		"method", endpoint.Method,
		"path", endpoint.Path,
	)
	writeData(w, http.StatusCreated, endpoint)
}

// handleUpdateEndpoint handles PUT /endpoints/{id}. Supplied fields are
// merged over the stored record; a supplied response replaces the stored
// one in full, and id and createdAt are never touched.
func (a *API) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	endpoint, err := a.store.Endpoints().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Endpoint not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get endpoint for update", "endpointID", id))
		return
	}

	var patch EndpointPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	if patch.ProjectID != nil {
		if err := a.requireProject(ctx, *patch.ProjectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "projectId does not reference an existing project")
				return
			}
			writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "check project", "projectID", *patch.ProjectID))
			return
		}
		endpoint.ProjectID = *patch.ProjectID
	}
	if patch.Path != nil {
		endpoint.Path = *patch.Path
	}
	if patch.Method != nil {
		endpoint.Method = stub.NormalizeMethod(*patch.Method)
	}
	if patch.Enabled != nil {
		endpoint.Enabled = *patch.Enabled
	}
	if patch.Response != nil {
		endpoint.Response = patch.Response
	}
	if err := endpoint.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	endpoint.UpdatedAt = time.Now().UTC()
	if err := a.store.Endpoints().Update(ctx, endpoint); err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "update endpoint", "endpointID", id))
		return
	}

	writeData(w, http.StatusOK, endpoint)
}

// handleDeleteEndpoint handles DELETE /endpoints/{id}.
func (a *API) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.store.Endpoints().Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Endpoint not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "delete endpoint", "endpointID", id))
		return
	}

	a.log.Info("endpoint deleted", "endpointID", id)
	w.WriteHeader(http.StatusNoContent)
}

// requireProject checks that a project id references a stored project.
// An empty id passes here; endpoint validation reports it as a missing
// field instead.
func (a *API) requireProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return nil
	}
	_, err := a.store.Projects().Get(ctx, projectID)
	return err
}
