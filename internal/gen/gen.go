// Package gen turns source text into trees for diffing. Each generator
// covers one input language and registers its node types in a shared
// TypeRegistry, so that trees from the same generator are comparable.
package gen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

var (
	// ErrUnsupportedLanguage is returned when no generator claims a name or path.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax is wrapped by generators that reject malformed input.
	ErrSyntax = errors.New("syntax error")
)

// Generator builds a tree from source bytes.
type Generator interface {
	// Name is the registry key, e.g. "python"
	Name() string

	// Patterns are the doublestar globs of file names handled by the generator
	Patterns() []string

	// Generate parses src. Node positions are byte offsets into src.
	Generate(ctx context.Context, src []byte) (*tree.Node, error)
}

// Registry maps language names and file patterns to generators.
type Registry struct {
	mu         sync.RWMutex
	types      *tree.TypeRegistry
	generators map[string]Generator
	order      []string
}

// NewRegistry returns a registry holding every built-in generator, all
// registering node types in types.
func NewRegistry(types *tree.TypeRegistry) *Registry {
	r := NewEmptyRegistry(types)
	for _, g := range []Generator{
		NewPythonGenerator(types),
		NewJavaScriptGenerator(types),
		NewGoGenerator(types),
		NewYAMLGenerator(types),
		NewJSONGenerator(types),
		NewSexprGenerator(types),
	} {
		if err := r.Register(g); err != nil {
			panic(err)
		}
	}
	return r
}

// NewEmptyRegistry returns a registry without generators.
func NewEmptyRegistry(types *tree.TypeRegistry) *Registry {
	return &Registry{types: types, generators: make(map[string]Generator)}
}

// Types returns the type registry shared by the generators.
func (r *Registry) Types() *tree.TypeRegistry { return r.types }

// Register adds g. Names must be unique.
func (r *Registry) Register(g Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.generators[g.Name()]; ok {
		return fmt.Errorf("generator %q already registered", g.Name())
	}
	for _, p := range g.Patterns() {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("generator %q: invalid pattern %q", g.Name(), p)
		}
	}
	r.generators[g.Name()] = g
	r.order = append(r.order, g.Name())
	return nil
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[strings.ToLower(name)]
	return g, ok
}

// Get is Lookup with an error naming the missing language.
func (r *Registry) Get(name string) (Generator, error) {
	g, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}
	return g, nil
}

// ForPath returns the first generator, in registration order, whose
// patterns match the base name of path.
func (r *Registry) ForPath(path string) (Generator, error) {
	base := filepath.Base(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		g := r.generators[name]
		for _, p := range g.Patterns() {
			if ok, _ := doublestar.Match(p, base); ok {
				return g, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no generator for %s", ErrUnsupportedLanguage, path)
}

// Names lists the registered generators alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Patterns returns every registered pattern, for file discovery.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		out = append(out, r.generators[name].Patterns()...)
	}
	return out
}
