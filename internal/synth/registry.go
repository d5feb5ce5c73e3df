package synth

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps provider keys to synthesizers. It is filled at startup and
// only read afterwards; jobs resolve their provider once with Lookup.
type Registry struct {
	providers map[string]Synthesizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Synthesizer)}
}

// Register adds or replaces the synthesizer for key. Keys are case-insensitive.
func (r *Registry) Register(key string, s Synthesizer) {
	r.providers[normalizeKey(key)] = s
}

// Lookup returns the synthesizer registered under key.
func (r *Registry) Lookup(key string) (Synthesizer, error) {
	s, ok := r.providers[normalizeKey(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownProvider, key, strings.Join(r.Keys(), ", "))
	}
	return s, nil
}

// Keys lists registered providers in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
