// Request history handlers.

package admin

import (
	"net/http"
	"strconv"

	"github.com/getstubd/stubd/pkg/requestlog"
)

// handleListRequests handles GET /requests. Query parameters projectId,
// endpointId, method, path, status, limit, and offset narrow the list;
// entries come back newest first.
func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	if a.requests == nil {
		writeData(w, http.StatusOK, RequestLogResponse{Requests: []*requestlog.Entry{}})
		return
	}

	q := r.URL.Query()
	filter := &requestlog.Filter{
		ProjectID:  q.Get("projectId"),
		EndpointID: q.Get("endpointId"),
		Method:     q.Get("method"),
		Path:       q.Get("path"),
	}
	if v := q.Get("status"); v != "" {
		if status, err := strconv.Atoi(v); err == nil {
			filter.StatusCode = status
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filter.Offset = offset
		}
	}

	entries := a.requests.List(filter)
	writeData(w, http.StatusOK, RequestLogResponse{
		Requests: entries,
		Count:    len(entries),
		Total:    a.requests.Count(),
	})
}

// handleClearRequests handles DELETE /requests.
func (a *API) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	if a.requests != nil {
		a.requests.Clear()
	}
	w.WriteHeader(http.StatusNoContent)
}
