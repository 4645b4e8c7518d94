// Package validation checks JSON payloads against declarative field rules.
//
// A Schema is an ordered list of Property rules. Validate runs in one of two
// modes:
//
//   - ModeCreate: required fields must be present and every field present
//     must satisfy its rule
//   - ModeUpdate: only the fields present in the patch are checked
//
// Validation never fails with an error; it returns a Result whose Messages
// are suitable for an {"errors": [...]} response body:
//
//	result := schema.Validate(body, validation.ModeCreate)
//	if result.HasErrors() {
//	    return result.Messages()
//	}
//
// The same rules can be rendered as JSON Schema (Draft 2020-12) and compiled
// with github.com/santhosh-tekuri/jsonschema/v5, which is how fixture files
// are checked before they are loaded.
package validation
