package matcher

import (
	"errors"
	"fmt"
	"sync"
)

// Strategy names known to NewRegistry
const (
	StrategyFast      = "gumtree"
	StrategyThorough  = "gumtree-complete"
	StrategyHungarian = "gumtree-hungarian"
	StrategyOptimal   = "zs"
)

// ErrUnknownMatcher is returned when a strategy name is not registered.
var ErrUnknownMatcher = errors.New("unknown matcher")

// Factory builds a matcher from options.
type Factory func(opts Options) Matcher

// StrategyInfo describes a registered strategy.
type StrategyInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Registry holds the matcher strategies available to an application.
// It is built by the caller and passed where matchers are composed.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	infos     []StrategyInfo
}

// NewRegistry returns a registry preloaded with the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.mustRegister(StrategyFast, "greedy subtree + greedy bottom-up (default)", func(opts Options) Matcher {
		return NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, opts, DefaultFastSizeThreshold)
	})
	r.mustRegister(StrategyThorough, "clique subtree + complete bottom-up, larger optimal threshold", func(opts Options) Matcher {
		return NewComposite(StrategyThorough, SubtreeClique, BottomUpComplete, opts, DefaultThoroughSizeThreshold)
	})
	r.mustRegister(StrategyHungarian, "Hungarian subtree + greedy bottom-up", func(opts Options) Matcher {
		return NewComposite(StrategyHungarian, SubtreeHungarian, BottomUpGreedy, opts, DefaultFastSizeThreshold)
	})
	r.mustRegister(StrategyOptimal, "exact Zhang-Shasha alignment, small trees only", func(opts Options) Matcher {
		return newOptimalStrategy(opts)
	})
	return r
}

func (r *Registry) mustRegister(name, description string, f Factory) {
	if err := r.Register(name, description, f); err != nil {
		panic(err)
	}
}

// Register adds a strategy. Names must be unique.
func (r *Registry) Register(name, description string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("matcher registration requires a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("matcher %q already registered", name)
	}
	r.factories[name] = f
	r.infos = append(r.infos, StrategyInfo{Name: name, Description: description})
	return nil
}

// Lookup returns the factory for name. The boolean is false when the name is
// not registered.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// New builds the named matcher. An empty name selects the fast strategy.
func (r *Registry) New(name string, opts Options) (Matcher, error) {
	if name == "" {
		name = StrategyFast
	}
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, name)
	}
	return f(opts), nil
}

// Strategies lists registered strategies in registration order.
func (r *Registry) Strategies() []StrategyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StrategyInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

// Names lists registered strategy names in registration order.
func (r *Registry) Names() []string {
	infos := r.Strategies()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
