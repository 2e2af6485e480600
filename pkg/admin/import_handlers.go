// OpenAPI import handler.

package admin

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getstubd/stubd/pkg/portability"
	"github.com/getstubd/stubd/pkg/stub"
)

// maxImportBytes caps the accepted document size.
const maxImportBytes = 10 << 20

// handleImportOpenAPI handles POST /import/openapi. The request body is
// the OpenAPI document itself, JSON or YAML; a basePath query parameter
// overrides the base path derived from the document's servers.
func (a *API) handleImportOpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Request body is empty")
		return
	}

	result, err := a.importer.Import(data)
	if err != nil {
		a.log.Warn("openapi import failed", "error", err)
		var importErr *portability.ImportError
		if errors.As(err, &importErr) {
			writeError(w, http.StatusBadRequest, importErr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to import document")
		return
	}

	project := result.Project
	if basePath := r.URL.Query().Get("basePath"); basePath != "" {
		project.BasePath = stub.NormalizeBasePath(basePath)
	}

	now := time.Now().UTC()
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now
	if err := project.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	ctx := r.Context()
	if err := a.store.Projects().Create(ctx, project); err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "create imported project", "projectID", project.ID))
		return
	}

	created := 0
	for _, endpoint := range result.Endpoints {
		endpoint.ID = uuid.NewString()
		endpoint.ProjectID = project.ID
		endpoint.CreatedAt = now
		endpoint.UpdatedAt = now
		if err := endpoint.Validate(); err != nil {
			a.log.Warn("skipping imported endpoint", "method", endpoint.Method, "path", endpoint.Path, "error", err)
			continue
		}
		if err := a.store.Endpoints().Create(ctx, endpoint); err != nil {
			writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "create imported endpoint", "endpointID", endpoint.ID))
			return
		}
		created++
	}

	a.log.Info("openapi import complete", "projectID", project.ID, "endpoints", created)
	writeData(w, http.StatusCreated, ImportResponse{Project: project, Endpoints: created})
}
