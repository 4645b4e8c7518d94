// Health, index, OpenAPI and admin handlers for the mock API.

package engine

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/getmockd/mockrest/pkg/stateful"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	// Uptime is whole seconds since the handler was built.
	Uptime int64 `json:"uptime"`
}

// IndexEntry describes one resource in the index.
type IndexEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	Resources []IndexEntry `json:"resources"`
	OpenAPI   string       `json:"openapi"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.respond.JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: int64(math.Floor(time.Since(h.startTime).Seconds())),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	overview := h.store.Overview()
	entries := make([]IndexEntry, 0, len(overview.ResourceList))
	for _, info := range overview.ResourceList {
		entries = append(entries, IndexEntry{
			Name:  info.Name,
			Path:  h.prefix + "/" + info.Name,
			Count: info.ItemCount,
		})
	}
	h.respond.JSON(w, http.StatusOK, IndexResponse{
		Name:      "mockrest",
		Version:   h.version,
		Resources: entries,
		OpenAPI:   "/openapi.json",
	})
}

func (h *Handler) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiDoc)
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	h.respond.JSON(w, http.StatusOK, h.store.Overview())
}

// handleReset restores seed data for every resource, or only the one named
// by ?resource=.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("resource")
	resp, err := h.store.Reset(name)
	if err != nil {
		var nf *stateful.NotFoundError
		if errors.As(err, &nf) {
			h.respond.Error(w, http.StatusNotFound, nf.Error())
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.log.Info("state reset", "resources", resp.Resources)
	h.respond.JSON(w, http.StatusOK, resp)
}
