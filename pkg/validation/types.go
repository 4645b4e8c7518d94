package validation

// FieldValidator defines validation rules for a single field.
type FieldValidator struct {
	// Type is the expected JSON type: string, number, integer, boolean, array, object.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Required means the field must be present on create.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// NonEmpty rejects the empty string.
	NonEmpty bool `json:"nonEmpty,omitempty" yaml:"nonEmpty,omitempty"`

	// Number bounds (inclusive), applied to number and integer types.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Array rules.
	MinItems *int           `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	Items    *FieldValidator `json:"items,omitempty" yaml:"items,omitempty"`

	// StopAtFirstItem stops item validation after the first failing element.
	StopAtFirstItem bool `json:"stopAtFirstItem,omitempty" yaml:"stopAtFirstItem,omitempty"`

	// Properties validates nested object fields in order.
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Message replaces every error produced for this field with a single message.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Description is carried into generated JSON Schema and OpenAPI documents.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Property binds a field name to its rule.
type Property struct {
	Name string          `json:"name" yaml:"name"`
	Rule *FieldValidator `json:"rule" yaml:"rule"`
}

// Mode selects create or update semantics.
type Mode int

const (
	// ModeCreate enforces required fields.
	ModeCreate Mode = iota
	// ModeUpdate checks only the fields present.
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Schema is the ordered rule set for one resource payload.
type Schema struct {
	Properties []Property
}

// RequiredFields lists the names of required top-level fields in order.
func (s *Schema) RequiredFields() []string {
	if s == nil {
		return nil
	}
	var names []string
	for _, p := range s.Properties {
		if p.Rule != nil && p.Rule.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Rule constructors used when declaring resources.

// String returns a rule for a string field.
func String() *FieldValidator { return &FieldValidator{Type: "string"} }

// Integer returns a rule for an integer field.
func Integer() *FieldValidator { return &FieldValidator{Type: "integer"} }

// Number returns a rule for a numeric field.
func Number() *FieldValidator { return &FieldValidator{Type: "number"} }

// Boolean returns a rule for a boolean field.
func Boolean() *FieldValidator { return &FieldValidator{Type: "boolean"} }

// Object returns a rule for an object field with ordered properties.
func Object(props ...Property) *FieldValidator {
	return &FieldValidator{Type: "object", Properties: props}
}

// Array returns a rule for an array whose elements satisfy items.
func Array(items *FieldValidator) *FieldValidator {
	return &FieldValidator{Type: "array", Items: items}
}

// Field pairs a name with a rule.
func Field(name string, rule *FieldValidator) Property {
	return Property{Name: name, Rule: rule}
}

// Require marks the rule as required and, for strings, non-empty.
func (v *FieldValidator) Require() *FieldValidator {
	v.Required = true
	if v.Type == "string" {
		v.NonEmpty = true
	}
	return v
}

// AtLeast sets an inclusive lower bound.
func (v *FieldValidator) AtLeast(n float64) *FieldValidator {
	v.Min = &n
	return v
}

// AtMost sets an inclusive upper bound.
func (v *FieldValidator) AtMost(n float64) *FieldValidator {
	v.Max = &n
	return v
}

// NonEmptyArray requires at least one element.
func (v *FieldValidator) NonEmptyArray() *FieldValidator {
	one := 1
	v.MinItems = &one
	return v
}

// WithMessage overrides the failure message.
func (v *FieldValidator) WithMessage(msg string) *FieldValidator {
	v.Message = msg
	return v
}

// Describe attaches a description.
func (v *FieldValidator) Describe(desc string) *FieldValidator {
	v.Description = desc
	return v
}

// FirstItemOnly stops item validation at the first failing element.
func (v *FieldValidator) FirstItemOnly() *FieldValidator {
	v.StopAtFirstItem = true
	return v
}
