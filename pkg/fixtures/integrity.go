package fixtures

import (
	"fmt"

	"github.com/getmockd/mockrest/pkg/stateful"
)

// Problem is a dangling foreign key found in seed data.
type Problem struct {
	Resource string `json:"resource"`
	ID       int64  `json:"id"`
	Message  string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s #%d: %s", p.Resource, p.ID, p.Message)
}

// CheckIntegrity runs the create-time reference checks over every stored
// record and reports each violation.
func CheckIntegrity(store *stateful.StateStore) []Problem {
	var problems []Problem
	for _, name := range store.List() {
		res := store.Get(name)
		cfg := res.Config()
		if len(cfg.References) == 0 {
			continue
		}
		for _, rec := range res.List() {
			for _, msg := range store.CheckReferences(cfg, rec, nil) {
				problems = append(problems, Problem{Resource: name, ID: rec.ID(), Message: msg})
			}
		}
	}
	return problems
}
