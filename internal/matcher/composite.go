package matcher

import (
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Composite runs the top-down subtree phase and then the bottom-up phase over
// one shared mapping store.
type Composite struct {
	name     string
	subtree  SubtreeVariant
	bottomUp BottomUpVariant
	opts     Options
}

// NewComposite creates a composite matcher. Options left at their zero value
// take the package defaults; sizeThreshold is used when opts has none.
func NewComposite(name string, subtree SubtreeVariant, bottomUp BottomUpVariant, opts Options, sizeThreshold int) *Composite {
	return &Composite{
		name:     name,
		subtree:  subtree,
		bottomUp: bottomUp,
		opts:     opts.withDefaults(sizeThreshold),
	}
}

// Name returns the registry name of the strategy
func (c *Composite) Name() string { return c.name }

// SubtreeVariant returns the disambiguation variant of the top-down phase
func (c *Composite) SubtreeVariant() SubtreeVariant { return c.subtree }

// BottomUpVariant returns the variant of the bottom-up phase
func (c *Composite) BottomUpVariant() BottomUpVariant { return c.bottomUp }

// Options returns the effective options
func (c *Composite) Options() Options { return c.opts }

// Match returns the mapping between src and dst
func (c *Composite) Match(src, dst *tree.Node) (*MappingStore, error) {
	res, err := c.MatchWithStats(src, dst)
	if err != nil {
		return nil, err
	}
	return res.Mappings, nil
}

// MatchWithStats returns the mapping together with per-phase counters
func (c *Composite) MatchWithStats(src, dst *tree.Node) (*Result, error) {
	if err := validateInputs(src, dst, c.opts.Registry); err != nil {
		return nil, err
	}
	if src == nil || dst == nil {
		return &Result{Mappings: NewMappingStore()}, nil
	}
	tree.Refresh(src)
	tree.Refresh(dst)

	st := newMatchState(src, dst, c.opts)
	matchSubtrees(st, c.subtree)
	bu := &bottomUp{variant: c.bottomUp, optimal: NewOptimalMatcher(c.opts.CostModel)}
	bu.match(st)

	return &Result{Mappings: st.store, Stats: st.stats}, nil
}

// optimalStrategy exposes the optimal matcher as a standalone strategy for
// small trees. It runs regardless of size and only warns above the threshold.
type optimalStrategy struct {
	matcher *OptimalMatcher
	opts    Options
}

func newOptimalStrategy(opts Options) *optimalStrategy {
	opts = opts.withDefaults(DefaultThoroughSizeThreshold)
	return &optimalStrategy{matcher: NewOptimalMatcher(opts.CostModel), opts: opts}
}

func (s *optimalStrategy) Name() string { return StrategyOptimal }

func (s *optimalStrategy) Match(src, dst *tree.Node) (*MappingStore, error) {
	res, err := s.MatchWithStats(src, dst)
	if err != nil {
		return nil, err
	}
	return res.Mappings, nil
}

func (s *optimalStrategy) MatchWithStats(src, dst *tree.Node) (*Result, error) {
	if err := validateInputs(src, dst, s.opts.Registry); err != nil {
		return nil, err
	}
	if src == nil || dst == nil {
		return &Result{Mappings: NewMappingStore()}, nil
	}
	tree.Refresh(src)
	tree.Refresh(dst)

	if src.Size() > s.opts.SizeThreshold || dst.Size() > s.opts.SizeThreshold {
		s.opts.Logger.Printf("WARNING: optimal matching on trees of %d/%d nodes exceeds threshold %d",
			src.Size(), dst.Size(), s.opts.SizeThreshold)
	}
	store, err := s.matcher.Match(src, dst)
	if err != nil {
		return nil, err
	}
	return &Result{Mappings: store, Stats: Stats{OptimalRuns: 1}}, nil
}
