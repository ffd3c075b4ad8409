package confines

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// FeatureDocumentation renders the declared features of the type: each
// feature name with its doc string (internal whitespace and newline runs
// collapsed to single spaces), sorted alphabetically. When providers are
// registered, a capability matrix follows: one row per provider, one column
// per feature, a marker where the provider has the feature.
func (t *ResourceType) FeatureDocumentation() string {
	features := t.Features()
	if len(features) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Features:\n")
	for _, name := range features {
		fmt.Fprintf(&b, "  %s: %s\n", name, collapseWhitespace(t.features[name].Docs()))
	}

	providers := t.Providers()
	if len(providers) == 0 {
		return b.String()
	}

	b.WriteString("\nProvider support:\n")
	table := tablewriter.NewWriter(&b)
	table.SetHeader(append([]string{"provider"}, features...))
	for _, name := range providers {
		p := t.providers[name]
		row := []string{name}
		for _, feature := range features {
			marker := ""
			if p.HasCapability(feature) {
				marker = "X"
			}
			row = append(row, marker)
		}
		table.Append(row)
	}
	table.Render()

	return b.String()
}

// collapseWhitespace folds runs of whitespace, including newlines from
// indented doc strings, into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
