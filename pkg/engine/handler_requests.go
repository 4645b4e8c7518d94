package engine

import (
	"net/http"
	"strconv"

	"github.com/getmockd/mockrest/pkg/requestlog"
)

// MessageRequestNotFound is returned for unknown journal entry ids.
const MessageRequestNotFound = "Request not found"

// RequestLogListResponse is the body of GET /__admin/requests.
type RequestLogListResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	// Count is len(Requests); Total is every entry the journal holds.
	Count int `json:"count"`
	Total int `json:"total"`
}

// handleListRequests handles GET /__admin/requests.
//
// Query Parameters:
//   - method: Filter by HTTP method
//   - path: Filter by path prefix
//   - status: Filter by response status code
//   - limit: Maximum number of entries to return
//   - offset: Pagination offset
func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &requestlog.Filter{
		Method: q.Get("method"),
		Path:   q.Get("path"),
	}
	if n, err := strconv.Atoi(q.Get("status")); err == nil {
		filter.StatusCode = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		filter.Offset = n
	}

	entries := h.journal.List(filter)
	h.respond.JSON(w, http.StatusOK, RequestLogListResponse{
		Requests: entries,
		Count:    len(entries),
		Total:    h.journal.Count(),
	})
}

// handleGetRequest handles GET /__admin/requests/{id}.
func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	entry := h.journal.Get(r.PathValue("id"))
	if entry == nil {
		h.respond.Error(w, http.StatusNotFound, MessageRequestNotFound)
		return
	}
	h.respond.JSON(w, http.StatusOK, entry)
}

// handleClearRequests handles DELETE /__admin/requests.
func (h *Handler) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	n := h.journal.Clear()
	h.log.Info("request journal cleared", "entries", n)
	h.respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Request logs cleared",
		"cleared": n,
	})
}
