package confines

import "fmt"

// DefinitionError reports a bug in a type or provider declaration: a
// duplicate feature name, an extension of an unknown capability, or a
// feature collection constructed without its required arguments.
//
// Definition errors abort the declaring code path. They are never produced
// by evaluation: a confine that does not pass is an ordinary false result.
type DefinitionError struct {
	// Label identifies the owning declaration, e.g. "service" or
	// "service.enableable".
	Label string
	// Reason is a human-readable description of the declaration bug.
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("definition error: %s: %s", e.Label, e.Reason)
	}
	return fmt.Sprintf("definition error: %s", e.Reason)
}
