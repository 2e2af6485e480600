// Settings handlers.

package admin

import (
	"encoding/json"
	"net/http"

	"github.com/getstubd/stubd/pkg/stub"
)

// handleGetSettings handles GET /settings. Settings are lazily created;
// before any update is stored the defaults come back.
func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.store.Settings().Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get settings"))
		return
	}
	writeData(w, http.StatusOK, settings)
}

// handleUpdateSettings handles PUT /settings. The patch is merged over
// the stored settings; absent fields keep their value.
func (a *API) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch stub.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeJSONError(err, a.log))
		return
	}

	ctx := r.Context()

	// Validate the merged result before persisting anything.
	current, err := a.store.Settings().Get(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "get settings"))
		return
	}
	merged := current.Clone()
	merged.Apply(&patch)
	if err := merged.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, sanitizeValidationError(err, a.log))
		return
	}

	settings, err := a.store.Settings().Update(ctx, &patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, sanitizeError(err, a.log, "update settings"))
		return
	}

	a.log.Info("settings updated")
	writeData(w, http.StatusOK, settings)
}
