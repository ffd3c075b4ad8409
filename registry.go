package confines

import (
	"slices"
	"sort"
)

// kindEntry binds a predicate kind name to its constructor and its
// class-level summarizer. Summarizers aggregate the most recent outcome
// vectors across every confine of the kind; shapes differ by kind on
// purpose (counts for boolean kinds, missing-value lists for the rest).
type kindEntry struct {
	build     func(values []any, forBinary bool, env *Env) Confine
	summarize func(confines []Confine) any
}

// confineKinds is the closed registry of predicate kinds. Lookup of an
// unknown name yields no match; callers fall back to the variable kind with
// the name bound as the fact to check.
var confineKinds = map[string]kindEntry{
	"true": {
		build: func(values []any, _ bool, env *Env) Confine {
			return &trueConfine{baseConfine{values: values, env: env}}
		},
		summarize: summarizePassed,
	},
	"false": {
		build: func(values []any, _ bool, env *Env) Confine {
			return &falseConfine{baseConfine{values: values, env: env}}
		},
		summarize: summarizePassed,
	},
	"exists": {
		build: func(values []any, forBinary bool, env *Env) Confine {
			return &existsConfine{baseConfine: baseConfine{values: values, env: env}, forBinary: forBinary}
		},
		summarize: summarizeMissing,
	},
	"methods": {
		build: func(values []any, _ bool, env *Env) Confine {
			return &methodsConfine{baseConfine{values: values, env: env}}
		},
		summarize: summarizeMissingSet,
	},
	"feature": {
		build: func(values []any, _ bool, env *Env) Confine {
			return &featureConfine{baseConfine{values: values, env: env}}
		},
		summarize: summarizeMissingSet,
	},
}

// buildConfine resolves a criteria key to a confine. Unrecognized names
// route to the fact-based variable kind, never to an error.
func buildConfine(name string, values []any, forBinary bool, env *Env) Confine {
	key := canonicalName(name)
	if entry, ok := confineKinds[key]; ok {
		return entry.build(values, forBinary, env)
	}
	return &variableConfine{baseConfine: baseConfine{values: values, env: env}, fact: key}
}

// summarizeKind aggregates the outcome vectors of all confines sharing a
// kind. The variable kind is handled out of the registry because its
// summary is keyed by fact name.
func summarizeKind(kind string, confines []Confine) any {
	if entry, ok := confineKinds[kind]; ok {
		return entry.summarize(confines)
	}
	return summarizeVariables(confines)
}

// summaryEmpty reports whether a per-kind aggregate carries no information
// and should be omitted from the summary mapping.
func summaryEmpty(aggregate any) bool {
	switch v := aggregate.(type) {
	case nil:
		return true
	case int:
		return v == 0
	case []string:
		return len(v) == 0
	case map[string][]any:
		return len(v) == 0
	default:
		return false
	}
}

// summarizePassed counts passing values across boolean-kind confines.
func summarizePassed(confines []Confine) any {
	count := 0
	for _, c := range confines {
		switch cc := c.(type) {
		case *trueConfine:
			count += cc.passedCount()
		case *falseConfine:
			count += cc.passedCount()
		}
	}
	return count
}

// summarizeMissing lists the values that did not resolve, in declaration
// order, across exists-kind confines.
func summarizeMissing(confines []Confine) any {
	var missing []string
	for _, c := range confines {
		ec, ok := c.(*existsConfine)
		if !ok {
			continue
		}
		for _, v := range ec.failedValues() {
			missing = append(missing, stringify(v))
		}
	}
	return missing
}

// summarizeMissingSet unions missing names across confines of a kind,
// deduplicated and sorted.
func summarizeMissingSet(confines []Confine) any {
	seen := make(map[string]struct{})
	var missing []string
	for _, c := range confines {
		var failed []any
		switch cc := c.(type) {
		case *methodsConfine:
			failed = cc.failedValues()
		case *featureConfine:
			failed = cc.failedValues()
		}
		for _, v := range failed {
			name := stringify(v)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// summarizeVariables maps each failing fact confine to its required
// candidate list.
func summarizeVariables(confines []Confine) any {
	out := make(map[string][]any)
	for _, c := range confines {
		vc, ok := c.(*variableConfine)
		if !ok {
			continue
		}
		if vc.passedCount() > 0 {
			continue
		}
		out[vc.fact] = append(out[vc.fact], vc.Values()...)
	}
	return out
}

// sortedKeys returns the keys of a criteria mapping in stable order so
// confine declaration order is deterministic.
func sortedKeys(criteria Criteria) []string {
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
