package renderer

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps format identifiers to generator factories. It is safe for
// concurrent use; lookups never observe a half-applied registration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Default is the process-wide registry populated at startup.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// Register binds format to factory, replacing any previous binding.
func (r *Registry) Register(format string, factory Factory) {
	key := normalizeFormat(format)
	if key == "" {
		panic("renderer: Register with empty format")
	}
	if factory == nil {
		panic(fmt.Sprintf("renderer: Register %q with nil factory", key))
	}
	r.mu.Lock()
	r.factories[key] = factory
	r.mu.Unlock()
}

// RegisterAll registers each descriptor in order.
func (r *Registry) RegisterAll(descs ...Descriptor) {
	for _, d := range descs {
		r.Register(d.Format, d.Factory)
	}
}

// Unregister removes format and reports whether it was present.
func (r *Registry) Unregister(format string) bool {
	key := normalizeFormat(format)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; !ok {
		return false
	}
	delete(r.factories, key)
	return true
}

// Create instantiates the generator bound to format (case-insensitive).
func (r *Registry) Create(format string) (Generator, error) {
	key := normalizeFormat(format)
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedFormatError{Format: format, Available: r.AvailableFormats()}
	}
	return factory(), nil
}

// Supports reports whether format is registered.
func (r *Registry) Supports(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalizeFormat(format)]
	return ok
}

// AvailableFormats returns the registered identifiers, sorted.
func (r *Registry) AvailableFormats() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the current bindings. Tests use it with Restore
// to put a mutated registry back.
func (r *Registry) Snapshot() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.factories))
	for k, f := range r.factories {
		out = append(out, Descriptor{Format: k, Factory: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

// Restore replaces every binding with descs.
func (r *Registry) Restore(descs []Descriptor) {
	next := make(map[string]Factory, len(descs))
	for _, d := range descs {
		next[normalizeFormat(d.Format)] = d.Factory
	}
	r.mu.Lock()
	r.factories = next
	r.mu.Unlock()
}
