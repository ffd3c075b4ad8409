package confines

// Collection is an unordered bag of confines belonging to one provider
// definition. It answers "is this provider usable at all" and produces a
// per-kind failure summary for diagnostics. A Collection is owned
// exclusively by one provider and never shared.
type Collection struct {
	label    string
	env      *Env
	confines []Confine
}

// NewCollection returns an empty collection labeled with the owning
// provider identity. A nil env selects [DefaultEnv].
func NewCollection(label string, env *Env) *Collection {
	if env == nil {
		env = DefaultEnv()
	}
	return &Collection{label: label, env: env}
}

// Label returns the diagnostic label of the collection.
func (c *Collection) Label() string { return c.label }

// Len returns the number of confines in the collection.
func (c *Collection) Len() int { return len(c.confines) }

// Confine appends one confine per criteria key. The reserved [ForBinary]
// key is stripped first and sets binary resolution on the "exists" confines
// created from the same criteria. Keys naming no registered kind become
// fact confines. Keys whose value normalizes to zero candidates are
// skipped: a confine with no values is meaningless and is never constructed.
func (c *Collection) Confine(criteria Criteria) {
	forBinary := false
	if v, ok := criteria[ForBinary]; ok {
		forBinary = truthy(v)
	}
	for _, key := range sortedKeys(criteria) {
		if canonicalName(key) == ForBinary {
			continue
		}
		values := normalizeValues(criteria[key])
		if len(values) == 0 {
			continue
		}
		cf := buildConfine(key, values, forBinary, c.env)
		cf.setLabel(c.label)
		c.confines = append(c.confines, cf)
	}
}

// Valid reports whether every confine evaluates true for subject. An empty
// collection is invalid: absence of any stated requirement means "not
// explicitly confined", not "always true" — providers opt in via explicit
// declaration instead.
func (c *Collection) Valid(subject any) bool {
	if len(c.confines) == 0 {
		return false
	}
	for _, cf := range c.confines {
		if !cf.Valid(subject) {
			return false
		}
	}
	return true
}

// Summary evaluates every confine against subject and aggregates failures
// per kind. Kinds whose aggregate is empty or zero are omitted. The result
// is purely diagnostic and never drives control flow; summarization of an
// empty collection yields an empty mapping.
func (c *Collection) Summary(subject any) map[string]any {
	byKind := make(map[string][]Confine)
	var order []string
	for _, cf := range c.confines {
		cf.Valid(subject)
		kind := cf.Kind()
		if _, seen := byKind[kind]; !seen {
			order = append(order, kind)
		}
		byKind[kind] = append(byKind[kind], cf)
	}

	out := make(map[string]any, len(order))
	for _, kind := range order {
		aggregate := summarizeKind(kind, byKind[kind])
		if summaryEmpty(aggregate) {
			continue
		}
		out[kind] = aggregate
	}
	return out
}

// FeatureCollection is a named, documented bag of confines belonging to one
// declared feature of a resource type. The type owns one master instance
// per feature; each capability bundle works on a [FeatureCollection.Clone]
// so providers can extend a feature's confines without mutating the master.
type FeatureCollection struct {
	Collection
	name string
	docs string
}

// NewFeatureCollection constructs the confine collection for one declared
// feature. Name, label, and docs are all required; omitting any of them is
// a definition error.
func NewFeatureCollection(name, label, docs string, env *Env) (*FeatureCollection, error) {
	switch {
	case canonicalName(name) == "":
		return nil, &DefinitionError{Label: label, Reason: "feature requires a name"}
	case label == "":
		return nil, &DefinitionError{Label: name, Reason: "feature requires a label"}
	case docs == "":
		return nil, &DefinitionError{Label: label, Reason: "feature requires documentation"}
	}
	return &FeatureCollection{
		Collection: *NewCollection(label, env),
		name:       canonicalName(name),
		docs:       docs,
	}, nil
}

// Name returns the canonical feature name.
func (f *FeatureCollection) Name() string { return f.name }

// Docs returns the raw documentation text of the feature.
func (f *FeatureCollection) Docs() string { return f.docs }

// Clone returns an independent collection with the same name, label, and
// docs, and a deep copy of every confine. Appending confines to the clone
// is never observable from the original or from any other clone.
func (f *FeatureCollection) Clone() *FeatureCollection {
	confines := make([]Confine, len(f.confines))
	for i, cf := range f.confines {
		confines[i] = cf.clone()
	}
	return &FeatureCollection{
		Collection: Collection{label: f.label, env: f.env, confines: confines},
		name:       f.name,
		docs:       f.docs,
	}
}
