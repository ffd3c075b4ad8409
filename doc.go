// Package confines decides, at runtime, whether a pluggable implementation
// ("provider") of an abstract resource type is usable on the current host,
// and whether it supports particular optional capabilities ("features").
//
// A resource type declares named features, each guarded by zero or more
// confines: boolean predicates evaluated against host facts, filesystem
// state, method availability, or process-wide feature flags. A provider
// supports a feature either because it explicitly declared support, or
// because every confine of that feature evaluates true against it.
//
// # API Model
//
// The package exposes three layers:
//   - [Confine] and [Collection] for raw predicate evaluation
//   - [ResourceType] for declaring features with [ResourceType.DeclareFeature]
//   - [Provider] for capability queries: [Provider.HasCapability],
//     [Provider.Capabilities], [Provider.Satisfies], and the mutators
//     [Provider.DeclareCapabilities] and [Provider.ExtendConfine]
//
// Keep these layers separate:
//   - model host preconditions as confines on a provider ([Provider.Confine])
//   - model optional behavior as features on the type
//   - model process-wide flags (e.g. "is library X available") as global
//     features registered on the environment's [GlobalFeatureSet]
//
// # Confine kinds
//
// The predicate kinds form a closed set: "true", "false", "exists" (with an
// optional for-binary mode that resolves values on the search path),
// "methods", and "feature". Any other criteria key is treated as a fact name
// and checked against the environment's fact source.
//
// # Quick start
//
// Declare a type with a guarded feature and ask a provider about it:
//
//	svc := confines.NewResourceType("service", nil)
//	svc.MustDeclareFeature("enableable", "The provider can enable and disable the service.", confines.Criteria{
//	    "methods": []string{"Enable", "Disable"},
//	})
//
//	systemd, err := svc.Provide("systemd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	systemd.Confine(confines.Criteria{"exists": "/run/systemd/system"})
//
//	if systemd.Suitable() && systemd.HasCapability("enableable") {
//	    // use the provider
//	}
//
// # Failure semantics
//
// A confine that does not pass, an absent fact, a missing file, or a missing
// method are ordinary false results, never errors. Errors are reserved for
// declaration bugs ([DefinitionError]): duplicate feature names, extending an
// unknown capability, or constructing a feature collection without required
// arguments. Detailed failure reasons are available through
// [Collection.Summary] and [ResourceType.FeatureDocumentation], never inline
// with the boolean checks.
//
// # Concurrency
//
// Feature registries are fixed at type-definition time. The per-type
// capability bundle is built lazily, at most once, behind an initialization
// guard. [Provider.DeclareCapabilities] and [Provider.ExtendConfine] mutate
// provider-private state only and need external synchronization only if the
// same provider is mutated from multiple goroutines.
package confines
