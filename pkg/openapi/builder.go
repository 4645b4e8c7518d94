package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/mockrest/pkg/stateful"
	"github.com/getmockd/mockrest/pkg/validation"
)

// Version is the OpenAPI version emitted.
const Version = "3.0.3"

// Options controls document metadata.
type Options struct {
	Title       string
	Version     string
	Description string
	// Prefix is prepended to every resource path, e.g. "/api".
	Prefix string
	// ServerURL is listed under servers when set.
	ServerURL string
}

// Build renders the document for the given resource configurations and
// validates it.
func Build(configs []*stateful.ResourceConfig, opts Options) (*openapi3.T, error) {
	if opts.Title == "" {
		opts.Title = "mockrest"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	b := &builder{
		prefix: strings.TrimSuffix(opts.Prefix, "/"),
		byName: make(map[string]*stateful.ResourceConfig, len(configs)),
		doc: &openapi3.T{
			OpenAPI: Version,
			Info: &openapi3.Info{
				Title:       opts.Title,
				Version:     opts.Version,
				Description: opts.Description,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas: openapi3.Schemas{},
			},
		},
	}
	if opts.ServerURL != "" {
		b.doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}
	for _, cfg := range configs {
		b.byName[cfg.Name] = cfg
	}

	b.addCommonSchemas()
	for _, cfg := range configs {
		b.addResource(cfg)
	}
	for _, cfg := range configs {
		for _, n := range cfg.Nested {
			if err := b.addNested(cfg, n); err != nil {
				return nil, err
			}
		}
	}
	b.addHealth()

	if err := b.doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("generated OpenAPI document is invalid: %w", err)
	}
	return b.doc, nil
}

// Marshal renders the document as JSON, indented when pretty is set.
func Marshal(doc *openapi3.T, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

type builder struct {
	doc    *openapi3.T
	prefix string
	byName map[string]*stateful.ResourceConfig
}

func (b *builder) ref(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Ref:   "#/components/schemas/" + name,
		Value: b.doc.Components.Schemas[name].Value,
	}
}

func (b *builder) addCommonSchemas() {
	errSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())
	errSchema.Required = []string{"error"}
	b.doc.Components.Schemas["Error"] = openapi3.NewSchemaRef("", errSchema)

	errsSchema := openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	errsSchema.Required = []string{"errors"}
	b.doc.Components.Schemas["ValidationErrors"] = openapi3.NewSchemaRef("", errsSchema)
}

func (b *builder) addResource(cfg *stateful.ResourceConfig) {
	record := recordSchema(cfg.Schema, true)
	record.Description = cfg.Label + " record"
	b.doc.Components.Schemas[cfg.Label] = openapi3.NewSchemaRef("", record)

	input := recordSchema(cfg.Schema, false)
	b.doc.Components.Schemas[cfg.Label+"Input"] = openapi3.NewSchemaRef("", input)

	page := openapi3.NewObjectSchema().
		WithProperty("total", openapi3.NewIntegerSchema()).
		WithProperty("limit", openapi3.NewIntegerSchema()).
		WithProperty("offset", openapi3.NewIntegerSchema())
	page.Properties["results"] = &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:  &openapi3.Types{openapi3.TypeArray},
		Items: b.ref(cfg.Label),
	}}
	page.Required = []string{"total", "limit", "offset", "results"}
	b.doc.Components.Schemas[cfg.Label+"Page"] = openapi3.NewSchemaRef("", page)

	deleted := openapi3.NewObjectSchema().WithProperty("message", openapi3.NewStringSchema())
	deleted.Properties[cfg.Singular] = b.ref(cfg.Label)
	deleted.Required = []string{"message", cfg.Singular}
	b.doc.Components.Schemas[cfg.Label+"Deleted"] = openapi3.NewSchemaRef("", deleted)

	b.doc.Tags = append(b.doc.Tags, &openapi3.Tag{Name: cfg.Name, Description: cfg.Label + " operations"})

	collection := &openapi3.PathItem{}
	collection.Get = b.listOperation(cfg, cfg.Name, "list"+cfg.Label, cfg.DefaultLimit, nil)
	collection.Post = b.createOperation(cfg, cfg.Name, "create"+cfg.Label, nil)
	collection.Options = optionsOperation(cfg.Name)
	b.doc.Paths.Set(b.prefix+"/"+cfg.Name, collection)

	item := &openapi3.PathItem{Parameters: openapi3.Parameters{idParam(cfg.Label)}}
	item.Get = b.operation(cfg.Name, "get"+cfg.Label, "Get a "+strings.ToLower(cfg.Label),
		http.StatusOK, b.ref(cfg.Label), true)
	item.Put = b.updateOperation(cfg, "update"+cfg.Label, "Update a "+strings.ToLower(cfg.Label))
	item.Patch = b.updateOperation(cfg, "patch"+cfg.Label, "Partially update a "+strings.ToLower(cfg.Label))
	item.Delete = b.operation(cfg.Name, "delete"+cfg.Label, "Delete a "+strings.ToLower(cfg.Label),
		http.StatusOK, b.ref(cfg.Label+"Deleted"), true)
	item.Options = optionsOperation(cfg.Name)
	b.doc.Paths.Set(b.prefix+"/"+cfg.Name+"/{id}", item)
}

func (b *builder) addNested(parent *stateful.ResourceConfig, n stateful.Nested) error {
	child, ok := b.byName[n.Child]
	if !ok {
		return fmt.Errorf("%s nests unknown resource %q", parent.Name, n.Child)
	}
	limit := n.DefaultLimit
	if limit <= 0 {
		limit = child.DefaultLimit
	}
	suffix := parent.Label + child.Label
	item := &openapi3.PathItem{Parameters: openapi3.Parameters{idParam(parent.Label)}}
	item.Get = b.listOperation(child, parent.Name, "list"+suffix, limit, &n)
	item.Post = b.createOperation(child, parent.Name, "create"+suffix, &n)
	item.Options = optionsOperation(parent.Name)
	b.doc.Paths.Set(fmt.Sprintf("%s/%s/{id}/%s", b.prefix, parent.Name, child.Name), item)
	return nil
}

func (b *builder) addHealth() {
	health := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("uptime", openapi3.NewStringSchema())
	op := openapi3.NewOperation()
	op.OperationID = "health"
	op.Summary = "Liveness check"
	op.Tags = []string{"ops"}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Server is up").WithJSONSchema(health),
	}))
	b.doc.Paths.Set("/health", &openapi3.PathItem{Get: op})
}

func (b *builder) listOperation(cfg *stateful.ResourceConfig, tag, opID string, limit int, nested *stateful.Nested) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = opID
	op.Tags = []string{tag}
	op.Summary = "List " + cfg.Name
	op.Parameters = openapi3.Parameters{
		queryParam("limit", fmt.Sprintf("Page size (default %d)", limit), openapi3.NewIntegerSchema().WithMin(0)),
		queryParam("offset", "Number of matching records to skip", openapi3.NewIntegerSchema().WithMin(0)),
	}
	if len(cfg.SearchFields) > 0 {
		op.Parameters = append(op.Parameters, queryParam("q",
			"Case-insensitive substring search over "+strings.Join(cfg.SearchFields, ", "),
			openapi3.NewStringSchema()))
	}
	for _, f := range cfg.Filters {
		if nested != nil && f.Field == nested.ParentField {
			continue
		}
		op.Parameters = append(op.Parameters, queryParam(f.Param, filterDescription(f), openapi3.NewStringSchema()))
	}

	resp := openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Matching " + cfg.Name).WithJSONSchemaRef(b.ref(cfg.Label + "Page")),
	}))
	if nested != nil {
		resp.Set("404", b.errorResponse("Parent not found", "Error"))
	}
	op.Responses = resp
	return op
}

func (b *builder) createOperation(cfg *stateful.ResourceConfig, tag, opID string, nested *stateful.Nested) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = opID
	op.Tags = []string{tag}
	op.Summary = "Create a " + strings.ToLower(cfg.Label)
	if nested != nil {
		op.Description = fmt.Sprintf("%s is taken from the path.", nested.ParentField)
	}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(b.ref(cfg.Label + "Input")),
	}
	resp := openapi3.NewResponses(openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Created").WithJSONSchemaRef(b.ref(cfg.Label)),
	}))
	resp.Set("400", b.errorResponse("Validation failed", "ValidationErrors"))
	if nested != nil {
		resp.Set("404", b.errorResponse("Parent not found", "Error"))
	}
	op.Responses = resp
	return op
}

func (b *builder) updateOperation(cfg *stateful.ResourceConfig, opID, summary string) *openapi3.Operation {
	op := b.operation(cfg.Name, opID, summary, http.StatusOK, b.ref(cfg.Label), true)
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).
			WithJSONSchema(openapi3.NewObjectSchema().WithAnyAdditionalProperties()).
			WithDescription("Fields to merge into the record"),
	}
	op.Responses.Set("400", b.errorResponse("Validation failed", "ValidationErrors"))
	return op
}

func (b *builder) operation(tag, opID, summary string, status int, body *openapi3.SchemaRef, notFound bool) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = opID
	op.Tags = []string{tag}
	op.Summary = summary
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(http.StatusText(status)).WithJSONSchemaRef(body),
	}))
	if notFound {
		op.Responses.Set("404", b.errorResponse("Not found", "Error"))
	}
	return op
}

func (b *builder) errorResponse(desc, schema string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(b.ref(schema)),
	}
}

func optionsOperation(tag string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Tags = []string{tag}
	op.Summary = "CORS preflight"
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("No Content"),
	}))
	return op
}

func idParam(label string) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter("id").
		WithSchema(openapi3.NewIntegerSchema().WithMin(1)).
		WithDescription(label + " id")
	return &openapi3.ParameterRef{Value: p}
}

func queryParam(name, desc string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(name).WithSchema(schema).WithDescription(desc)}
}

func filterDescription(f stateful.FilterSpec) string {
	switch f.Match {
	case stateful.MatchFold:
		return "Case-insensitive match on " + f.Field
	case stateful.MatchContains:
		return f.Field + " contains the value"
	case stateful.MatchBool:
		return f.Field + " equals the boolean (true or false)"
	default:
		return "Exact match on " + f.Field
	}
}

// recordSchema converts payload rules to an OpenAPI object schema. Stored
// records get a read-only id; inputs list the create-required fields.
func recordSchema(s *validation.Schema, withID bool) *openapi3.Schema {
	obj := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	if withID {
		id := openapi3.NewIntegerSchema().WithMin(1)
		id.ReadOnly = true
		obj.WithProperty("id", id)
		obj.Required = append(obj.Required, "id")
	}
	if s == nil {
		return obj
	}
	for _, p := range s.Properties {
		obj.WithProperty(p.Name, ruleSchema(p.Rule))
	}
	if !withID {
		obj.Required = s.RequiredFields()
	}
	return obj
}

func ruleSchema(v *validation.FieldValidator) *openapi3.Schema {
	var s *openapi3.Schema
	switch v.Type {
	case "string":
		s = openapi3.NewStringSchema()
		if v.NonEmpty {
			s.WithMinLength(1)
		}
	case "integer":
		s = openapi3.NewIntegerSchema()
	case "number":
		s = openapi3.NewFloat64Schema()
	case "boolean":
		s = openapi3.NewBoolSchema()
	case "array":
		s = openapi3.NewArraySchema()
		if v.Items != nil {
			s.WithItems(ruleSchema(v.Items))
		}
		if v.MinItems != nil {
			s.WithMinItems(int64(*v.MinItems))
		}
	case "object":
		s = openapi3.NewObjectSchema()
		for _, p := range v.Properties {
			s.WithProperty(p.Name, ruleSchema(p.Rule))
			if p.Rule.Required {
				s.Required = append(s.Required, p.Name)
			}
		}
	default:
		s = &openapi3.Schema{}
	}
	if v.Min != nil {
		s.WithMin(*v.Min)
	}
	if v.Max != nil {
		s.WithMax(*v.Max)
	}
	if v.Message != "" {
		s.Description = v.Message
	} else if v.Description != "" {
		s.Description = v.Description
	}
	return s
}
