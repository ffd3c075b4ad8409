package confines

import (
	"os"
	"os/exec"
	"sync"
)

// FactSource supplies named host attributes for "variable" confines.
// Lookups are case-insensitive; absent facts are reported via the second
// return value, never as errors.
type FactSource interface {
	FactValue(name string) (any, bool)
}

// PathResolver answers filesystem questions for "exists" confines.
type PathResolver interface {
	// PathExists reports whether path names an existing filesystem entry.
	PathExists(path string) bool
	// FindOnSearchPath resolves an executable name on the search path.
	FindOnSearchPath(name string) (string, bool)
}

// GlobalOracle answers whether a process-wide feature flag is present.
// Global features are distinct from the per-type features declared on a
// [ResourceType]: they describe the process (e.g. "is library X available"),
// not a provider.
type GlobalOracle interface {
	GlobalFeatureAvailable(name string) bool
}

// Env bundles the external collaborators confines evaluate against.
// All fields must be non-nil; use [DefaultEnv] for host-backed defaults.
type Env struct {
	Facts   FactSource
	Paths   PathResolver
	Globals GlobalOracle
}

var (
	defaultEnvOnce sync.Once
	defaultEnv     *Env
	defaultGlobals = NewGlobalFeatureSet()
)

// DefaultEnv returns the process-wide environment backed by the host:
// cached host facts, os.Stat/exec.LookPath path resolution, and the global
// feature set populated via [RegisterGlobalFeature].
func DefaultEnv() *Env {
	defaultEnvOnce.Do(func() {
		defaultEnv = &Env{
			Facts:   HostFacts(),
			Paths:   HostPaths{},
			Globals: defaultGlobals,
		}
	})
	return defaultEnv
}

// RegisterGlobalFeature registers a probe for a named global feature on the
// default environment. The probe runs at most once, on first query.
func RegisterGlobalFeature(name string, probe func() bool) {
	defaultGlobals.Register(name, probe)
}

// HostPaths resolves paths against the real filesystem and search path.
type HostPaths struct{}

// PathExists reports whether path exists. Stat errors other than
// non-existence (e.g. permission) also count as not existing: evaluation
// never raises for an uncooperative environment.
func (HostPaths) PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindOnSearchPath resolves name via the PATH environment variable.
func (HostPaths) FindOnSearchPath(name string) (string, bool) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return p, true
}

// StaticFacts is a fixed fact source, useful in tests and for overriding
// host facts. Keys must be stored in canonical (lower-case) form.
type StaticFacts map[string]any

// FactValue implements [FactSource].
func (f StaticFacts) FactValue(name string) (any, bool) {
	v, ok := f[canonicalName(name)]
	return v, ok
}

// GlobalFeatureSet is a registry of process-wide feature flags. Each flag is
// backed by a probe function executed at most once; the outcome is memoized
// for the process lifetime.
type GlobalFeatureSet struct {
	mu     sync.Mutex
	probes map[string]func() bool
	known  map[string]bool
}

// NewGlobalFeatureSet returns an empty global feature set.
func NewGlobalFeatureSet() *GlobalFeatureSet {
	return &GlobalFeatureSet{
		probes: make(map[string]func() bool),
		known:  make(map[string]bool),
	}
}

// Register adds a named global feature backed by a probe. A nil probe marks
// the feature unconditionally available. Re-registering a name replaces the
// previous probe and discards any memoized outcome.
func (s *GlobalFeatureSet) Register(name string, probe func() bool) {
	key := canonicalName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if probe == nil {
		probe = func() bool { return true }
	}
	s.probes[key] = probe
	delete(s.known, key)
}

// Add marks the named global features unconditionally available.
func (s *GlobalFeatureSet) Add(names ...string) {
	for _, n := range names {
		s.Register(n, nil)
	}
}

// GlobalFeatureAvailable implements [GlobalOracle]. Unregistered names are
// simply unavailable.
func (s *GlobalFeatureSet) GlobalFeatureAvailable(name string) bool {
	key := canonicalName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.known[key]; ok {
		return outcome
	}
	probe, ok := s.probes[key]
	if !ok {
		return false
	}
	outcome := probe()
	s.known[key] = outcome
	return outcome
}
