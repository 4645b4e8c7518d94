package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema renders the rules as a Draft 2020-12 object schema. When
// withID is set the document also requires a positive integer "id", which
// is what stored records look like.
func (s *Schema) JSONSchema(withID bool) map[string]any {
	props := make(map[string]any, len(s.Properties)+1)
	required := make([]string, 0, len(s.Properties)+1)

	if withID {
		props["id"] = map[string]any{"type": "integer", "minimum": 1}
		required = append(required, "id")
	}
	for _, p := range s.Properties {
		props[p.Name] = ruleSchema(p.Rule)
		if p.Rule.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func ruleSchema(v *FieldValidator) map[string]any {
	out := map[string]any{}
	if v.Type != "" {
		out["type"] = v.Type
	}
	if v.Description != "" {
		out["description"] = v.Description
	}
	if v.NonEmpty {
		out["minLength"] = 1
	}
	if v.Min != nil {
		out["minimum"] = *v.Min
	}
	if v.Max != nil {
		out["maximum"] = *v.Max
	}
	if v.MinItems != nil {
		out["minItems"] = *v.MinItems
	}
	if v.Items != nil {
		out["items"] = ruleSchema(v.Items)
	}
	if len(v.Properties) > 0 {
		nested := &Schema{Properties: v.Properties}
		doc := nested.JSONSchema(false)
		out["properties"] = doc["properties"]
		if req, ok := doc["required"]; ok {
			out["required"] = req
		}
	}
	return out
}

// CompiledSchema is a compiled JSON Schema for one resource.
type CompiledSchema struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles the JSON Schema rendering of s.
func (s *Schema) Compile(name string, withID bool) (*CompiledSchema, error) {
	raw, err := json.Marshal(s.JSONSchema(withID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	url := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &CompiledSchema{name: name, schema: compiled}, nil
}

// Validate checks a decoded JSON value against the compiled schema.
func (c *CompiledSchema) Validate(v any) *Result {
	result := newResult()
	err := c.schema.Validate(v)
	if err == nil {
		return result
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		parseSchemaErrors(verr, result)
	} else {
		result.AddError(NewSchemaError("", err.Error()))
	}
	return result
}

// parseSchemaErrors flattens the leaf causes of a schema validation error.
func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(NewSchemaError(extractFieldFromPath(err.InstanceLocation), err.Message))
		return
	}
	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// extractFieldFromPath converts a JSON Pointer into dot notation.
func extractFieldFromPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
