package tree

import (
	"fmt"
	"sort"
	"sync"
)

// Type is a language-construct category code. Codes are only meaningful
// relative to the TypeRegistry that issued them.
type Type int

// NoType is never issued by a registry.
const NoType Type = -1

// TypeRegistry maps type names to stable codes. It is safe for concurrent use,
// so one registry can be shared by front-ends running in parallel.
type TypeRegistry struct {
	mu    sync.RWMutex
	codes map[string]Type
	names []string
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{codes: make(map[string]Type)}
}

// Register returns the code for name, issuing a new one on first use.
func (r *TypeRegistry) Register(name string) Type {
	r.mu.RLock()
	t, ok := r.codes[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.codes[name]; ok {
		return t
	}
	t = Type(len(r.names))
	r.codes[name] = t
	r.names = append(r.names, name)
	return t
}

// Lookup returns the code for name without registering it.
func (r *TypeRegistry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.codes[name]
	return t, ok
}

// Name returns the name registered for t, or a numeric placeholder.
func (r *TypeRegistry) Name(t Type) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t >= 0 && int(t) < len(r.names) {
		return r.names[t]
	}
	return fmt.Sprintf("type#%d", t)
}

// Known reports whether t was issued by this registry.
func (r *TypeRegistry) Known(t Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return t >= 0 && int(t) < len(r.names)
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns all registered names sorted alphabetically.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
