// Project CRUD handlers.

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// handleListProjects handles GET /projects.
func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.store.Projects().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "list projects"))
		return
	}
	writeData(w, http.StatusOK, projects)
}

// handleGetProject handles GET /projects/{id}.
func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	project, err := a.store.Projects().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get project", "projectID", id))
		return
	}
	writeData(w, http.StatusOK, project)
}

// handleCreateProject handles POST /projects. The server assigns the id
// and both timestamps; anything the client sent for them is ignored.
func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	basePath := input.BasePath
	if basePath != "" {
		basePath = stub.NormalizeBasePath(basePath)
	}

	now := time.Now().UTC()
	project := &stub.Project{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		BasePath:    basePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := project.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	if err := a.store.Projects().Create(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "create project", "projectID", project.ID))
		return
	}

	a.log.Info("project created", "projectID", project.ID, "name", project.Name, "basePath", project.BasePath)
	writeData(w, http.StatusCreated, project)
}

// handleUpdateProject handles PUT /projects/{id}. Supplied fields are
// merged over the stored record; id and createdAt are never touched.
func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	project, err := a.store.Projects().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get project for update", "projectID", id))
		return
	}

	var patch ProjectPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.BasePath != nil {
		project.BasePath = *patch.BasePath
		if *patch.BasePath != "" {
			project.BasePath = stub.NormalizeBasePath(*patch.BasePath)
		}
	}
	if err := project.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	project.UpdatedAt = time.Now().UTC()
	if err := a.store.Projects().Update(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "update project", "projectID", id))
		return
	}

	writeData(w, http.StatusOK, project)
}

// handleDeleteProject handles DELETE /projects/{id}. Deletion cascades to
// the project's endpoints.
func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.store.Projects().Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "delete project", "projectID", id))
		return
	}

	a.log.Info("project deleted", "projectID", id)
	w.WriteHeader(http.StatusNoContent)
}
