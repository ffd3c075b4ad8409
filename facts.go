package confines

import (
	"os"
	"runtime"
	"sync"
)

// Cache for host facts. Host identity does not change at runtime, so facts
// are collected once and reused for the process lifetime.
var (
	factsMu     sync.Mutex
	cachedFacts map[string]any
)

// HostFacts returns a [FactSource] backed by the current host. Facts are
// collected lazily on first lookup and cached; see [ResetFactCache].
//
// Common facts on every platform: "os", "arch", "cpus", "hostname". On
// Linux, additionally "kernelrelease", "kernelversion", and, when
// /etc/os-release is readable, "os.name" and "os.release".
func HostFacts() FactSource {
	return hostFactSource{}
}

type hostFactSource struct{}

// FactValue implements [FactSource]. Absent facts are not errors.
func (hostFactSource) FactValue(name string) (any, bool) {
	facts := collectFacts()
	v, ok := facts[canonicalName(name)]
	return v, ok
}

// HostFactValues returns a copy of all collected host facts, for
// diagnostics display.
func HostFactValues() map[string]any {
	facts := collectFacts()
	out := make(map[string]any, len(facts))
	for k, v := range facts {
		out[k] = v
	}
	return out
}

// ResetFactCache clears cached host facts, forcing the next lookup to
// re-collect. This is primarily useful for testing.
func ResetFactCache() {
	factsMu.Lock()
	defer factsMu.Unlock()
	cachedFacts = nil
}

func collectFacts() map[string]any {
	factsMu.Lock()
	defer factsMu.Unlock()

	if cachedFacts != nil {
		return cachedFacts
	}

	facts := map[string]any{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
		"cpus": runtime.NumCPU(),
	}
	if hostname, err := os.Hostname(); err == nil {
		facts["hostname"] = hostname
	}
	for k, v := range platformFacts() {
		facts[k] = v
	}

	cachedFacts = facts
	return cachedFacts
}
