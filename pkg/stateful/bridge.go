package stateful

import (
	"context"
	"errors"
	"time"

	"github.com/getmockd/mockrest/internal/id"
	"github.com/getmockd/mockrest/pkg/validation"
)

// Action represents the type of operation to perform on a resource.
type Action string

const (
	// ActionList retrieves a filtered, paginated page of records.
	ActionList Action = "list"
	// ActionGet retrieves a single record by id.
	ActionGet Action = "get"
	// ActionCreate validates and inserts a new record.
	ActionCreate Action = "create"
	// ActionUpdate validates and shallow-merges a patch into a record.
	ActionUpdate Action = "update"
	// ActionDelete removes a record by id.
	ActionDelete Action = "delete"
)

const actionCount = 5

func (a Action) index() int {
	switch a {
	case ActionList:
		return 0
	case ActionGet:
		return 1
	case ActionCreate:
		return 2
	case ActionUpdate:
		return 3
	case ActionDelete:
		return 4
	default:
		return -1
	}
}

// ResultStatus indicates the outcome of a bridge operation.
type ResultStatus int

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess ResultStatus = iota
	// StatusCreated indicates a new record was created.
	StatusCreated
	// StatusNotFound indicates the record, its parent or the resource was not found.
	StatusNotFound
	// StatusValidationError indicates an invalid payload or reference.
	StatusValidationError
	// StatusError indicates an internal or unexpected error.
	StatusError
)

// ParentScope restricts an operation to the children of one parent record.
type ParentScope struct {
	Resource string
	ID       int64
	// Field is the foreign key on the child that points at the parent.
	Field string
}

// OperationRequest is a transport-agnostic request against one resource.
type OperationRequest struct {
	Resource string
	Action   Action
	// ID is the record id for get, update and delete.
	ID int64
	// Data is the decoded JSON body for create and update. It may be any
	// JSON value; non-objects fail validation.
	Data any
	// Query holds list parameters.
	Query *Query
	// Parent scopes list and create to a parent record.
	Parent *ParentScope
}

// OperationResult is the outcome of Bridge.Execute.
type OperationResult struct {
	Status  ResultStatus
	Record  Record
	Page    *Page
	Deleted *DeleteResponse
	Error   error
}

// Bridge is the service layer every transport calls. Writes are validated
// in full (payload rules, then references) before any collection is touched.
type Bridge struct {
	store *StateStore
}

// NewBridge creates a new Bridge backed by the given StateStore.
func NewBridge(store *StateStore) *Bridge {
	if store == nil {
		panic("stateful.NewBridge: store must not be nil")
	}
	return &Bridge{store: store}
}

// Store returns the underlying StateStore.
func (b *Bridge) Store() *StateStore {
	return b.store
}

// Execute performs one operation and fires the store's observer.
func (b *Bridge) Execute(ctx context.Context, req *OperationRequest) *OperationResult {
	start := time.Now()
	observer := b.store.GetObserver()

	result := b.execute(ctx, req)
	if result.Error != nil {
		observer.OnError(req.Resource, req.Action, result.Error)
		return result
	}

	count := 1
	recordID := req.ID
	switch {
	case result.Page != nil:
		count = len(result.Page.Results)
	case result.Record != nil:
		recordID = result.Record.ID()
	}
	observer.OnOperation(req.Resource, req.Action, recordID, count, time.Since(start))
	return result
}

func (b *Bridge) execute(ctx context.Context, req *OperationRequest) *OperationResult {
	if err := ctx.Err(); err != nil {
		return errorToResult(err)
	}

	res := b.store.Get(req.Resource)
	if res == nil {
		return errorToResult(&NotFoundError{Resource: req.Resource, Label: "Resource"})
	}

	if req.Parent != nil {
		if err := b.checkParent(req.Parent); err != nil {
			return errorToResult(err)
		}
	}

	switch req.Action {
	case ActionList:
		return b.list(res, req)
	case ActionGet:
		rec := res.Get(req.ID)
		if rec == nil {
			return errorToResult(res.notFound(req.ID))
		}
		return &OperationResult{Status: StatusSuccess, Record: rec}
	case ActionCreate:
		return b.create(res, req)
	case ActionUpdate:
		return b.update(res, req)
	case ActionDelete:
		removed, err := res.Delete(req.ID)
		if err != nil {
			return errorToResult(err)
		}
		cfg := res.Config()
		return &OperationResult{
			Status: StatusSuccess,
			Record: removed,
			Deleted: &DeleteResponse{
				Message: cfg.Label + " deleted",
				Key:     cfg.Singular,
				Record:  removed,
			},
		}
	default:
		return errorToResult(errors.New("unsupported action: " + string(req.Action)))
	}
}

func (b *Bridge) checkParent(p *ParentScope) error {
	parent := b.store.Get(p.Resource)
	if parent == nil {
		return &NotFoundError{Resource: p.Resource, Label: "Resource"}
	}
	if !parent.Exists(p.ID) {
		return parent.notFound(p.ID)
	}
	return nil
}

func (b *Bridge) list(res *Resource, req *OperationRequest) *OperationResult {
	q := Query{}
	if req.Query != nil {
		q = *req.Query
	}
	if req.Parent != nil {
		scope := Condition{
			Spec:  FilterSpec{Param: req.Parent.Field, Field: req.Parent.Field, Match: MatchExact},
			Value: id.Format(req.Parent.ID),
		}
		q.Conditions = append([]Condition{scope}, q.Conditions...)
	}
	return &OperationResult{Status: StatusSuccess, Page: res.Query(&q)}
}

func (b *Bridge) create(res *Resource, req *OperationRequest) *OperationResult {
	cfg := res.Config()
	data := req.Data
	if obj, ok := data.(map[string]any); ok && req.Parent != nil {
		forced := Record(obj).Clone()
		forced[req.Parent.Field] = req.Parent.ID
		data = map[string]any(forced)
	}

	payload := cfg.Schema.Validate(data, validation.ModeCreate)
	msgs := payload.Messages()
	if obj, ok := data.(map[string]any); ok {
		msgs = append(msgs, b.store.CheckReferences(cfg, obj, payload)...)
	}
	if len(msgs) > 0 {
		return errorToResult(&ValidationError{Resource: cfg.Name, Messages: msgs})
	}

	rec := res.Create(data.(map[string]any))
	return &OperationResult{Status: StatusCreated, Record: rec}
}

func (b *Bridge) update(res *Resource, req *OperationRequest) *OperationResult {
	cfg := res.Config()
	if !res.Exists(req.ID) {
		return errorToResult(res.notFound(req.ID))
	}

	payload := cfg.Schema.Validate(req.Data, validation.ModeUpdate)
	if payload.HasErrors() {
		return errorToResult(&ValidationError{Resource: cfg.Name, Messages: payload.Messages()})
	}

	rec, err := res.Update(req.ID, req.Data.(map[string]any))
	if err != nil {
		return errorToResult(err)
	}
	return &OperationResult{Status: StatusSuccess, Record: rec}
}

// errorToResult maps a domain error onto a result status via errors.As.
func errorToResult(err error) *OperationResult {
	var (
		nf *NotFoundError
		ve *ValidationError
		mb *MalformedBodyError
	)
	switch {
	case errors.As(err, &nf):
		return &OperationResult{Status: StatusNotFound, Error: err}
	case errors.As(err, &ve), errors.As(err, &mb):
		return &OperationResult{Status: StatusValidationError, Error: err}
	default:
		return &OperationResult{Status: StatusError, Error: err}
	}
}
