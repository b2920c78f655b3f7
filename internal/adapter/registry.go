package adapter

import (
	"strings"

	"github.com/moolen/depgraph/internal/logging"
)

// Registry holds the set of known adapters and implements source-kind
// detection: explicit hint, then filename pattern, then content
// probe, falling back to router-log with a warning if nothing matches.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
	logger   *logging.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Adapter),
		logger: logging.GetLogger("adapter.registry"),
	}
}

// Register adds an adapter, preserving registration order for content-probe
// fallthrough (the first registered adapter whose CanProcess matches wins).
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
	r.byName[a.Name()] = a
	r.logger.Debug("registered adapter: %s", a.Name())
}

// ByName returns the adapter registered under name, if any.
func (r *Registry) ByName(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// List returns the names of all registered adapters in registration order.
func (r *Registry) List() []string {
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return names
}

// filenamePattern associates a filename suffix with an adapter name.
type filenamePattern struct {
	suffix string
	name   string
}

// defaultFilenamePatterns drives the filename step of detection. ".yaml"/".yml" additionally requires a "kind:" line to disambiguate
// from the configuration-file adapter's own YAML-ish inputs, so it's
// special-cased in Detect rather than listed here.
var defaultFilenamePatterns = []filenamePattern{
	{".log", "router-log"},
	{".properties", "configuration-file"},
	{".conf", "configuration-file"},
	{".cfg", "configuration-file"},
}

// Detect chooses an adapter for raw, given an optional explicit hint (a
// registered adapter name) and an optional filename. Detection order:
//  1. explicit hint, if it names a registered adapter
//  2. filename pattern match
//  3. content probe: first registered adapter whose CanProcess(raw) is true
//  4. fallback to "router-log" with a logged warning
func (r *Registry) Detect(hint, filename, raw string) Adapter {
	if hint != "" {
		if a, ok := r.byName[hint]; ok {
			return a
		}
		r.logger.Warn("explicit source type hint %q not registered, falling through to detection", hint)
	}

	if filename != "" {
		lower := strings.ToLower(filename)
		if (strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")) && strings.Contains(raw, "kind:") {
			if a, ok := r.byName["kubernetes"]; ok {
				return a
			}
		}
		for _, p := range defaultFilenamePatterns {
			if strings.HasSuffix(lower, p.suffix) {
				if a, ok := r.byName[p.name]; ok {
					return a
				}
			}
		}
	}

	for _, a := range r.adapters {
		if a.CanProcess(raw) {
			return a
		}
	}

	r.logger.Warn("no adapter matched input (hint=%q, filename=%q); falling back to router-log", hint, filename)
	if a, ok := r.byName["router-log"]; ok {
		return a
	}
	return nil
}
