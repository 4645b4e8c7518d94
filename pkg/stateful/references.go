package stateful

import (
	"fmt"

	"github.com/getmockd/mockrest/pkg/validation"
)

// CheckReferences verifies that every foreign key in data points at an
// existing record and returns one message per violation. Fields that already
// failed payload validation are skipped. For array references the scan stops
// at the first missing element.
func (s *StateStore) CheckReferences(config *ResourceConfig, data Record, payload *validation.Result) []string {
	var msgs []string
	for _, ref := range config.References {
		if payload.Failed(ref.Field) {
			continue
		}
		value, ok := data[ref.Field]
		if !ok {
			continue
		}

		target := s.Get(ref.Resource)
		if target == nil {
			msgs = append(msgs, fmt.Sprintf("Invalid %s: unknown resource %q", ref.Key(), ref.Resource))
			continue
		}

		if ref.Item == "" {
			if msg, bad := checkOne(target, ref, value); bad {
				msgs = append(msgs, msg)
			}
			continue
		}

		elems, isArr := value.([]any)
		if !isArr {
			continue
		}
		for _, elem := range elems {
			obj, isObj := elem.(map[string]any)
			if !isObj {
				continue
			}
			if msg, bad := checkOne(target, ref, obj[ref.Item]); bad {
				msgs = append(msgs, msg)
				break
			}
		}
	}
	return msgs
}

func checkOne(target *Resource, ref Reference, value any) (string, bool) {
	noun := target.Config().Singular
	if refID, ok := AsID(value); ok && target.Exists(refID) {
		return "", false
	}
	return fmt.Sprintf("Invalid %s: %s %s does not exist", ref.Key(), noun, FieldString(value)), true
}
