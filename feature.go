package confines

import (
	"fmt"
	"sort"
	"sync"
)

// ResourceType is an abstract resource type: it owns the registry of
// declared features and the set of registered providers. Feature
// declarations happen at type-definition time; after startup the registry
// is effectively immutable except for appending confines.
type ResourceType struct {
	name string
	env  *Env

	features map[string]*FeatureCollection
	order    []string // insertion order of feature declarations

	providers map[string]*Provider
	provOrder []string

	// The capability bundle: a private clone of the feature registry built
	// lazily, at most once, and shared by every provider of the type.
	bundleOnce sync.Once
	bundle     map[string]*FeatureCollection
}

// NewResourceType returns a type with an empty feature registry. A nil env
// selects [DefaultEnv].
func NewResourceType(name string, env *Env) *ResourceType {
	if env == nil {
		env = DefaultEnv()
	}
	return &ResourceType{
		name:      name,
		env:       env,
		features:  make(map[string]*FeatureCollection),
		providers: make(map[string]*Provider),
	}
}

// Name returns the type name.
func (t *ResourceType) Name() string { return t.name }

// DeclareFeature registers a named, documented feature on the type,
// optionally guarded by confines built from criteria. Feature names are
// normalized to canonical form; declaring a name twice is a definition
// error, not a runtime condition.
func (t *ResourceType) DeclareFeature(name, docs string, criteria Criteria) error {
	key := canonicalName(name)
	if _, dup := t.features[key]; dup {
		return &DefinitionError{
			Label:  t.name,
			Reason: fmt.Sprintf("feature %q already declared", key),
		}
	}
	label := t.name + "." + key
	fc, err := NewFeatureCollection(key, label, docs, t.env)
	if err != nil {
		return err
	}
	if len(criteria) > 0 {
		fc.Confine(criteria)
	}
	t.features[key] = fc
	t.order = append(t.order, key)
	return nil
}

// MustDeclareFeature is like [ResourceType.DeclareFeature] but panics on a
// definition error. Intended for package-level type declarations.
func (t *ResourceType) MustDeclareFeature(name, docs string, criteria Criteria) {
	if err := t.DeclareFeature(name, docs, criteria); err != nil {
		panic(err)
	}
}

// Features returns all declared feature names, sorted.
func (t *ResourceType) Features() []string {
	names := make([]string, 0, len(t.features))
	for name := range t.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Feature returns the master confine collection of a declared feature.
// Callers must not mutate it; providers extend features through
// [Provider.ExtendConfine] instead.
func (t *ResourceType) Feature(name string) (*FeatureCollection, bool) {
	fc, ok := t.features[canonicalName(name)]
	return fc, ok
}

// Provide registers a provider of the type. Registering the same provider
// name twice is a definition error.
func (t *ResourceType) Provide(name string) (*Provider, error) {
	key := canonicalName(name)
	if key == "" {
		return nil, &DefinitionError{Label: t.name, Reason: "provider requires a name"}
	}
	if _, dup := t.providers[key]; dup {
		return nil, &DefinitionError{
			Label:  t.name,
			Reason: fmt.Sprintf("provider %q already registered", key),
		}
	}
	p := &Provider{
		name:     key,
		typ:      t,
		confines: NewCollection(t.name+" provider "+key, t.env),
		declared: make(map[string]struct{}),
		local:    make(map[string]*FeatureCollection),
	}
	t.providers[key] = p
	t.provOrder = append(t.provOrder, key)
	return p, nil
}

// MustProvide is like [ResourceType.Provide] but panics on a definition
// error.
func (t *ResourceType) MustProvide(name string) *Provider {
	p, err := t.Provide(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Providers returns all registered provider names, sorted.
func (t *ResourceType) Providers() []string {
	names := make([]string, 0, len(t.providers))
	for name := range t.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider returns a registered provider by name.
func (t *ResourceType) Provider(name string) (*Provider, bool) {
	p, ok := t.providers[canonicalName(name)]
	return p, ok
}

// capabilityBundle builds, once per type, the private clone of the feature
// registry consulted by every provider of the type. Cloning here keeps the
// master registry untouched by anything providers do afterwards.
func (t *ResourceType) capabilityBundle() map[string]*FeatureCollection {
	t.bundleOnce.Do(func() {
		t.bundle = make(map[string]*FeatureCollection, len(t.features))
		for name, fc := range t.features {
			t.bundle[name] = fc.Clone()
		}
	})
	return t.bundle
}
