package validation

import (
	"fmt"
	"math"
	"strings"
)

// ValidateField validates a single value against a FieldValidator.
func ValidateField(field, location string, value any, validator *FieldValidator) *Result {
	result := newResult()
	if validator == nil {
		return result
	}

	checkField(field, location, value, validator, result)
	return applyMessage(result, validator)
}

func checkField(field, location string, value any, v *FieldValidator, result *Result) {
	if value == nil {
		if v.Type != "" {
			result.AddError(NewTypeError(field, location, v.Type, nil))
		}
		return
	}

	// Stop on type mismatch: range and item checks are meaningless afterwards.
	if v.Type != "" && !matchesType(value, v.Type) {
		result.AddError(NewTypeError(field, location, v.Type, value))
		return
	}

	switch val := value.(type) {
	case string:
		if v.NonEmpty && val == "" {
			result.AddError(NewEmptyError(field, location))
		}
	case []any:
		validateArray(field, location, val, v, result)
	case map[string]any:
		validateObject(field, location, val, v.Properties, ModeCreate, result)
	default:
		if n, ok := AsNumber(value); ok {
			validateNumber(field, location, n, v, result)
		}
	}
}

// applyMessage collapses all errors into one when the rule carries a custom message.
func applyMessage(result *Result, v *FieldValidator) *Result {
	if v.Message == "" || !result.HasErrors() {
		return result
	}
	first := result.Errors[0]
	return &Result{
		Valid: false,
		Errors: []*FieldError{{
			Field:    first.Field,
			Location: first.Location,
			Code:     first.Code,
			Message:  v.Message,
			Received: first.Received,
		}},
	}
}

func validateNumber(field, location string, n float64, v *FieldValidator, result *Result) {
	if v.Min != nil && n < *v.Min {
		result.AddError(NewMinError(field, location, *v.Min, n))
	}
	if v.Max != nil && n > *v.Max {
		result.AddError(NewMaxError(field, location, *v.Max, n))
	}
}

func validateArray(field, location string, items []any, v *FieldValidator, result *Result) {
	if v.MinItems != nil && len(items) < *v.MinItems {
		result.AddError(NewMinItemsError(field, location, *v.MinItems, len(items)))
		return
	}
	if v.Items == nil {
		return
	}
	for i, item := range items {
		itemResult := ValidateField(fmt.Sprintf("%s[%d]", field, i), location, item, v.Items)
		result.Merge(itemResult)
		if itemResult.HasErrors() && v.StopAtFirstItem {
			return
		}
	}
}

func validateObject(field, location string, obj map[string]any, props []Property, mode Mode, result *Result) {
	for _, p := range props {
		name := p.Name
		if field != "" {
			name = field + "." + p.Name
		}
		value, exists := obj[p.Name]
		if !exists {
			if mode == ModeCreate && p.Rule.Required {
				result.Merge(applyMessage(&Result{Valid: false, Errors: []*FieldError{NewRequiredError(name, location)}}, p.Rule))
			}
			continue
		}
		result.Merge(ValidateField(name, location, value, p.Rule))
	}
}

// Validate checks body against the schema. It never fails: a body that is
// not a JSON object yields a single "Invalid body format" error.
func (s *Schema) Validate(body any, mode Mode) *Result {
	result := newResult()
	obj, ok := body.(map[string]any)
	if !ok {
		result.AddError(NewBodyError())
		return result
	}
	if s == nil {
		return result
	}
	validateObject("", LocationBody, obj, s.Properties, mode, result)
	return result
}

// Failed reports whether field, or anything nested under it, produced an error.
func (r *Result) Failed(field string) bool {
	if r == nil {
		return false
	}
	for _, e := range r.Errors {
		if e.Field == field || strings.HasPrefix(e.Field, field+"[") || strings.HasPrefix(e.Field, field+".") {
			return true
		}
	}
	return false
}

func matchesType(value any, expected string) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "number":
		_, ok := AsNumber(value)
		return ok
	case "integer":
		n, ok := AsNumber(value)
		return ok && n == math.Trunc(n) && !math.IsInf(n, 0)
	default:
		return true
	}
}

// AsNumber converts the numeric types produced by encoding/json and by
// application code into a float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
