// Resource CRUD handlers for the mock API.

package engine

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getmockd/mockrest/internal/id"
	"github.com/getmockd/mockrest/pkg/httputil"
	"github.com/getmockd/mockrest/pkg/stateful"
)

// collectionHandler serves /R: list and create.
func (h *Handler) collectionHandler(cfg *stateful.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.execute(w, r, &stateful.OperationRequest{
				Resource: cfg.Name,
				Action:   stateful.ActionList,
				Query:    parseQuery(r, cfg, cfg.DefaultLimit, ""),
			})
		case http.MethodPost:
			h.handleCreate(w, r, cfg, nil)
		case http.MethodOptions:
			httputil.WriteNoContent(w)
		default:
			h.methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodOptions)
		}
	}
}

// itemHandler serves /R/{id}: get, update (PUT or PATCH) and delete.
func (h *Handler) itemHandler(cfg *stateful.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			httputil.WriteNoContent(w)
			return
		}

		recordID, ok := id.Parse(r.PathValue("id"))
		if !ok {
			h.writeError(w, r, &stateful.NotFoundError{Resource: cfg.Name, Label: cfg.Label, ID: r.PathValue("id")})
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.execute(w, r, &stateful.OperationRequest{
				Resource: cfg.Name,
				Action:   stateful.ActionGet,
				ID:       recordID,
			})
		case http.MethodPut, http.MethodPatch:
			data, err := h.decodeBody(w, r)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			h.execute(w, r, &stateful.OperationRequest{
				Resource: cfg.Name,
				Action:   stateful.ActionUpdate,
				ID:       recordID,
				Data:     data,
			})
		case http.MethodDelete:
			h.execute(w, r, &stateful.OperationRequest{
				Resource: cfg.Name,
				Action:   stateful.ActionDelete,
				ID:       recordID,
			})
		default:
			h.methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions)
		}
	}
}

// nestedHandler serves /P/{id}/R: list and create scoped to one parent.
func (h *Handler) nestedHandler(parent, child *stateful.ResourceConfig, n stateful.Nested) http.HandlerFunc {
	limit := n.DefaultLimit
	if limit <= 0 {
		limit = child.DefaultLimit
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			httputil.WriteNoContent(w)
			return
		}

		parentID, ok := id.Parse(r.PathValue("id"))
		if !ok {
			h.writeError(w, r, &stateful.NotFoundError{Resource: parent.Name, Label: parent.Label, ID: r.PathValue("id")})
			return
		}
		scope := &stateful.ParentScope{Resource: parent.Name, ID: parentID, Field: n.ParentField}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.execute(w, r, &stateful.OperationRequest{
				Resource: child.Name,
				Action:   stateful.ActionList,
				Query:    parseQuery(r, child, limit, n.ParentField),
				Parent:   scope,
			})
		case http.MethodPost:
			h.handleCreate(w, r, child, scope)
		default:
			h.methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodOptions)
		}
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, cfg *stateful.ResourceConfig, scope *stateful.ParentScope) {
	data, err := h.decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.execute(w, r, &stateful.OperationRequest{
		Resource: cfg.Name,
		Action:   stateful.ActionCreate,
		Data:     data,
		Parent:   scope,
	})
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, req *stateful.OperationRequest) {
	h.writeResult(w, r, h.bridge.Execute(r.Context(), req))
}

// decodeBody reads at most maxBodySize bytes and decodes them as any JSON
// value. Shape checks (object vs not) are left to the payload validator.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &stateful.PayloadTooLargeError{MaxSize: tooLarge.Limit}
		}
		return nil, &stateful.MalformedBodyError{Err: err}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &stateful.MalformedBodyError{Err: err}
	}
	return data, nil
}

// parseQuery builds the list query from the URL. A non-numeric or negative
// limit falls back to defaultLimit; a non-numeric or negative offset falls
// back to 0. The filter bound to skipParam is ignored (nested routes scope
// by the path instead). A boolean filter that is present but empty selects
// false.
func parseQuery(r *http.Request, cfg *stateful.ResourceConfig, defaultLimit int, skipParam string) *stateful.Query {
	values := r.URL.Query()

	q := &stateful.Query{
		Search:       values.Get("q"),
		SearchFields: cfg.SearchFields,
		Limit:        nonNegativeInt(values.Get("limit"), defaultLimit),
		Offset:       nonNegativeInt(values.Get("offset"), 0),
	}

	for _, spec := range cfg.Filters {
		if spec.Param == skipParam {
			continue
		}
		v := values.Get(spec.Param)
		if v != "" || (spec.Match == stateful.MatchBool && values.Has(spec.Param)) {
			q.Conditions = append(q.Conditions, stateful.Condition{Spec: spec, Value: v})
		}
	}
	return q
}

func nonNegativeInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
