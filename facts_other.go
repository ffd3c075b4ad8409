//go:build !linux

package confines

// platformFacts collects nothing on non-Linux platforms; the common facts
// from runtime and os still apply.
func platformFacts() map[string]any {
	return nil
}
