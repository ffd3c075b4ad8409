package confines

import (
	"fmt"
	"reflect"
	"strings"
)

// Criteria maps a predicate kind name (or an arbitrary fact name) to one or
// more candidate values. Scalar values are normalized to single-element
// lists during confine construction.
type Criteria map[string]any

// ForBinary is the reserved criteria key selecting binary resolution for
// "exists" confines: values are looked up on the search path instead of
// being treated as literal filesystem paths. It is stripped before confine
// construction and affects only the "exists" confines of the same criteria.
const ForBinary = "for_binary"

// Confine is a single predicate check with one or more candidate values.
// Concrete kinds form a closed set; see the package documentation. Confines
// are constructed through [Collection.Confine], never directly.
type Confine interface {
	// Kind returns the closed kind name: "true", "false", "exists",
	// "methods", "feature", or "variable" for the fact fallback.
	Kind() string
	// Values returns the candidate values. Never empty.
	Values() []any
	// Label identifies the owning collection ("Type.feature" or a provider
	// identity), used only in diagnostics.
	Label() string
	// Valid evaluates every candidate value against subject and reports
	// whether the confine as a whole passes. The per-value outcome vector
	// is retained for summarization.
	Valid(subject any) bool
	// Message renders a human-readable failure reason for one value.
	Message(value any) string

	setLabel(label string)
	clone() Confine
}

// baseConfine carries the state shared by every confine kind.
type baseConfine struct {
	values  []any
	label   string
	env     *Env
	results []bool // outcome vector from the most recent Valid call
}

func (b *baseConfine) Values() []any        { return b.values }
func (b *baseConfine) Label() string        { return b.label }
func (b *baseConfine) setLabel(label string) { b.label = label }

func (b *baseConfine) environment() *Env {
	if b.env != nil {
		return b.env
	}
	return DefaultEnv()
}

// eval applies pass to every candidate value and retains the outcomes.
// The confine passes when every value passes.
func (b *baseConfine) eval(subject any, pass func(value, subject any) bool) bool {
	b.results = make([]bool, len(b.values))
	ok := true
	for i, v := range b.values {
		b.results[i] = pass(v, subject)
		ok = ok && b.results[i]
	}
	return ok
}

// passedCount returns how many values passed in the most recent Valid call.
func (b *baseConfine) passedCount() int {
	n := 0
	for _, r := range b.results {
		if r {
			n++
		}
	}
	return n
}

// failedValues returns the values that did not pass in the most recent
// Valid call.
func (b *baseConfine) failedValues() []any {
	var out []any
	for i, r := range b.results {
		if !r {
			out = append(out, b.values[i])
		}
	}
	return out
}

// copyBase deep-copies the mutable confine state. The environment is shared:
// it is a read-only collaborator.
func (b *baseConfine) copyBase() baseConfine {
	values := make([]any, len(b.values))
	copy(values, b.values)
	return baseConfine{values: values, label: b.label, env: b.env}
}

// trueConfine passes a value iff it is truthy.
type trueConfine struct{ baseConfine }

func (c *trueConfine) Kind() string { return "true" }
func (c *trueConfine) Valid(subject any) bool {
	return c.eval(subject, func(v, _ any) bool { return truthy(v) })
}
func (c *trueConfine) Message(any) string { return "false value when expecting true" }
func (c *trueConfine) clone() Confine     { return &trueConfine{c.copyBase()} }

// falseConfine passes a value iff it is falsy.
type falseConfine struct{ baseConfine }

func (c *falseConfine) Kind() string { return "false" }
func (c *falseConfine) Valid(subject any) bool {
	return c.eval(subject, func(v, _ any) bool { return !truthy(v) })
}
func (c *falseConfine) Message(any) string { return "true value when expecting false" }
func (c *falseConfine) clone() Confine     { return &falseConfine{c.copyBase()} }

// existsConfine passes a value iff it resolves to an existing path, or, in
// for-binary mode, to an executable found on the search path.
type existsConfine struct {
	baseConfine
	forBinary bool
}

func (c *existsConfine) Kind() string { return "exists" }
func (c *existsConfine) Valid(subject any) bool {
	paths := c.environment().Paths
	return c.eval(subject, func(v, _ any) bool {
		name := fmt.Sprint(v)
		if name == "" {
			return false
		}
		if c.forBinary {
			_, found := paths.FindOnSearchPath(name)
			return found
		}
		return paths.PathExists(name)
	})
}
func (c *existsConfine) Message(value any) string {
	if c.forBinary {
		return fmt.Sprintf("binary %v not found on the search path", value)
	}
	return fmt.Sprintf("file %v does not exist", value)
}
func (c *existsConfine) clone() Confine {
	return &existsConfine{baseConfine: c.copyBase(), forBinary: c.forBinary}
}

// methodsConfine passes a value iff the subject exposes a method of that
// name. A subject that is itself a [reflect.Type] is checked for the method
// being defined; any other subject is checked for the method being
// invokable on its value.
type methodsConfine struct{ baseConfine }

func (c *methodsConfine) Kind() string { return "methods" }
func (c *methodsConfine) Valid(subject any) bool {
	return c.eval(subject, func(v, s any) bool { return hasMethod(s, fmt.Sprint(v)) })
}
func (c *methodsConfine) Message(value any) string {
	return fmt.Sprintf("method %v not available", value)
}
func (c *methodsConfine) clone() Confine { return &methodsConfine{c.copyBase()} }

// featureConfine passes a value iff the environment's global feature oracle
// reports the named process-wide feature present.
type featureConfine struct{ baseConfine }

func (c *featureConfine) Kind() string { return "feature" }
func (c *featureConfine) Valid(subject any) bool {
	globals := c.environment().Globals
	return c.eval(subject, func(v, _ any) bool {
		return globals.GlobalFeatureAvailable(fmt.Sprint(v))
	})
}
func (c *featureConfine) Message(value any) string {
	return fmt.Sprintf("global feature %v is missing", value)
}
func (c *featureConfine) clone() Confine { return &featureConfine{c.copyBase()} }

// variableConfine is the fallback for unrecognized kind names: the name is
// a fact, and the confine passes iff the fact's current value is a member
// of the candidate values. Unlike the other kinds this is a membership
// test, so the outcome vector records which candidate matched.
type variableConfine struct {
	baseConfine
	fact string
}

func (c *variableConfine) Kind() string { return "variable" }

// Fact returns the fact name this confine checks.
func (c *variableConfine) Fact() string { return c.fact }

func (c *variableConfine) Valid(subject any) bool {
	fv, known := c.environment().Facts.FactValue(c.fact)
	matched := false
	c.results = make([]bool, len(c.values))
	for i, v := range c.values {
		c.results[i] = known && factMatches(fv, v)
		matched = matched || c.results[i]
	}
	return matched
}
func (c *variableConfine) Message(value any) string {
	return fmt.Sprintf("fact %q does not match %v", c.fact, value)
}
func (c *variableConfine) clone() Confine {
	return &variableConfine{baseConfine: c.copyBase(), fact: c.fact}
}

// truthy reports whether a criteria value counts as true: nil and false are
// the only falsy values.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// factMatches compares a fact value with a candidate. Boolean facts match
// only boolean candidates; everything else compares by case-insensitive
// string form.
func factMatches(fact, candidate any) bool {
	if fb, ok := fact.(bool); ok {
		cb, ok := candidate.(bool)
		return ok && fb == cb
	}
	if _, ok := candidate.(bool); ok {
		return false
	}
	return strings.EqualFold(fmt.Sprint(fact), fmt.Sprint(candidate))
}

// hasMethod reports whether subject exposes a method of the given name.
func hasMethod(subject any, name string) bool {
	if subject == nil || name == "" {
		return false
	}
	if t, ok := subject.(reflect.Type); ok {
		_, defined := t.MethodByName(name)
		return defined
	}
	v := reflect.ValueOf(subject)
	if !v.IsValid() {
		return false
	}
	return v.MethodByName(name).IsValid()
}

// normalizeValues turns a criteria value into a candidate list. Scalars are
// wrapped; slices of any element type are flattened; nil yields no values
// (and therefore no confine).
func normalizeValues(raw any) []any {
	if raw == nil {
		return nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{raw}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}

// stringify renders a candidate value for diagnostics.
func stringify(v any) string {
	return fmt.Sprint(v)
}

// canonicalName normalizes feature, capability, and fact names.
func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
