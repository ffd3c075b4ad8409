package confines

import (
	"fmt"
	"sort"
)

// Provider is a concrete implementation of an abstract resource type,
// subject to confinement checks. Providers are created through
// [ResourceType.Provide].
//
// Capability queries consult, in order: the provider's explicit
// declarations, then the confines of the named feature evaluated against
// the provider's subject. Declaration always wins, even when the confines
// would fail.
type Provider struct {
	name string
	typ  *ResourceType

	// subject is what confines are evaluated against. Defaults to the
	// provider itself so method confines can target its method set.
	subject any

	// confines guards overall suitability of the provider on this host.
	confines *Collection

	// declared holds explicitly declared capability names.
	declared map[string]struct{}

	// local holds this provider's private clones of extended features,
	// created copy-on-extend from the type's capability bundle.
	local map[string]*FeatureCollection
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// Type returns the resource type the provider implements.
func (p *Provider) Type() *ResourceType { return p.typ }

// BindSubject sets the value confines are evaluated against. When unset,
// confines evaluate against the provider itself.
func (p *Provider) BindSubject(subject any) { p.subject = subject }

func (p *Provider) subjectValue() any {
	if p.subject != nil {
		return p.subject
	}
	return p
}

// Confine appends suitability confines to the provider. The provider is
// suitable only when every appended confine holds; a provider that never
// states any requirement is not suitable (see [Collection.Valid]).
func (p *Provider) Confine(criteria Criteria) {
	p.confines.Confine(criteria)
}

// Suitable reports whether the provider is usable at all on this host.
func (p *Provider) Suitable() bool {
	return p.confines.Valid(p.subjectValue())
}

// SuitabilitySummary aggregates the failures of the provider's suitability
// confines per kind, for diagnostics only.
func (p *Provider) SuitabilitySummary() map[string]any {
	return p.confines.Summary(p.subjectValue())
}

// DeclareCapabilities records that the provider explicitly supports the
// listed capability names, independent of confine evaluation. Declarations
// are idempotent, accumulate across calls, and are normalized to canonical
// form.
func (p *Provider) DeclareCapabilities(names ...string) {
	for _, name := range names {
		key := canonicalName(name)
		if key == "" {
			continue
		}
		p.declared[key] = struct{}{}
	}
}

// HasCapability reports whether the provider supports the named capability:
// either it was explicitly declared, or every confine of the capability
// holds for this provider.
func (p *Provider) HasCapability(name string) bool {
	key := canonicalName(name)
	if _, ok := p.declared[key]; ok {
		return true
	}
	fc := p.capability(key)
	if fc == nil {
		return false
	}
	return fc.Valid(p.subjectValue())
}

// Capabilities returns the names of all supported capabilities, sorted
// alphabetically and free of duplicates.
func (p *Provider) Capabilities() []string {
	var names []string
	for name := range p.typ.capabilityBundle() {
		if p.HasCapability(name) {
			names = append(names, name)
		}
	}
	// Declared names always count, even when nothing registered them as a
	// feature on the type.
	for name := range p.declared {
		if _, known := p.typ.capabilityBundle()[name]; !known {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Satisfies reports whether the provider supports every named capability.
// It is vacuously true for zero names and short-circuits on the first
// unsupported one.
func (p *Provider) Satisfies(names ...string) bool {
	for _, name := range names {
		if !p.HasCapability(name) {
			return false
		}
	}
	return true
}

// ExtendConfine appends confines to this provider's private clone of the
// named capability's collection. Extending an unknown capability is a
// definition error; it never creates the capability. The type's master
// collection and other providers' clones are unaffected.
func (p *Provider) ExtendConfine(name string, criteria Criteria) error {
	key := canonicalName(name)
	fc, ok := p.local[key]
	if !ok {
		master, known := p.typ.capabilityBundle()[key]
		if !known {
			return &DefinitionError{
				Label:  p.typ.name + " provider " + p.name,
				Reason: fmt.Sprintf("cannot confine unknown capability %q", key),
			}
		}
		fc = master.Clone()
		p.local[key] = fc
	}
	fc.Confine(criteria)
	return nil
}

// capability resolves the confine collection consulted for a capability:
// the provider's private clone when it extended the capability, the type
// bundle's clone otherwise.
func (p *Provider) capability(key string) *FeatureCollection {
	if fc, ok := p.local[key]; ok {
		return fc
	}
	return p.typ.capabilityBundle()[key]
}
