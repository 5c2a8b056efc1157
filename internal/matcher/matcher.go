package matcher

import (
	"fmt"
	"io"
	"log"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Default tuning values
const (
	// DefaultMinHeight includes leaves in top-down subtree matching
	DefaultMinHeight = 0

	// DefaultSimThreshold is the minimum bottom-up similarity for a match
	DefaultSimThreshold = 0.5

	// DefaultFastSizeThreshold bounds last-chance optimal matching in the fast strategy
	DefaultFastSizeThreshold = 100

	// DefaultThoroughSizeThreshold bounds last-chance optimal matching in the thorough strategy
	DefaultThoroughSizeThreshold = 200
)

// Matcher computes a mapping between two trees.
type Matcher interface {
	// Name returns the registry name of the strategy
	Name() string

	// Match returns a 1:1 mapping between nodes of src and dst
	Match(src, dst *tree.Node) (*MappingStore, error)

	// MatchWithStats is Match plus counters describing the run
	MatchWithStats(src, dst *tree.Node) (*Result, error)
}

// Result is a finalized mapping together with run statistics.
type Result struct {
	Mappings *MappingStore
	Stats    Stats
}

// Stats counts what each matching phase contributed. OptimalSkipped makes the
// size-threshold degradation observable.
type Stats struct {
	SubtreeCandidates int `json:"subtree_candidates" yaml:"subtree_candidates"`
	SubtreeMappings   int `json:"subtree_mappings" yaml:"subtree_mappings"`
	BottomUpMappings  int `json:"bottom_up_mappings" yaml:"bottom_up_mappings"`
	RecoveredMappings int `json:"recovered_mappings" yaml:"recovered_mappings"`
	OptimalRuns       int `json:"optimal_runs" yaml:"optimal_runs"`
	OptimalSkipped    int `json:"optimal_skipped" yaml:"optimal_skipped"`
}

// Options tunes a matcher. Zero values are replaced with defaults.
type Options struct {
	// MinHeight is the smallest subtree height considered by top-down matching
	MinHeight int

	// SimThreshold is the minimum bottom-up similarity score (0..1]
	SimThreshold float64

	// SizeThreshold is the largest pruned subtree size handed to the
	// optimal matcher. The bound is inclusive.
	SizeThreshold int

	// CostModel drives the optimal matcher; uniform when nil
	CostModel CostModel

	// Registry, when set, is used to reject nodes with unknown type codes
	Registry *tree.TypeRegistry

	// Logger receives warnings and skipped-refinement notices
	Logger *log.Logger
}

func (o Options) withDefaults(sizeThreshold int) Options {
	if o.MinHeight < 0 {
		o.MinHeight = DefaultMinHeight
	}
	if o.SimThreshold <= 0 {
		o.SimThreshold = DefaultSimThreshold
	}
	if o.SizeThreshold <= 0 {
		o.SizeThreshold = sizeThreshold
	}
	if o.CostModel == nil {
		o.CostModel = NewUniformCostModel()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// validateInputs enforces the tree contract before any matching starts.
// A nil root is an empty tree and is accepted.
func validateInputs(src, dst *tree.Node, reg *tree.TypeRegistry) error {
	if src != nil {
		if err := tree.Validate(src, reg); err != nil {
			return fmt.Errorf("invalid source tree: %w", err)
		}
	}
	if dst != nil {
		if err := tree.Validate(dst, reg); err != nil {
			return fmt.Errorf("invalid destination tree: %w", err)
		}
	}
	return nil
}

// matchState is the mutable state of one match run. It is never shared
// between runs, so the input trees stay untouched apart from cached metrics.
type matchState struct {
	src, dst   *tree.Node
	store      *MappingStore
	matchedSrc map[*tree.Node]bool
	matchedDst map[*tree.Node]bool
	srcIDs     map[*tree.Node]int
	dstIDs     map[*tree.Node]int
	maxSize    int
	desc       *descendantSets
	opts       Options
	stats      Stats
}

func newMatchState(src, dst *tree.Node, opts Options) *matchState {
	st := &matchState{
		src:        src,
		dst:        dst,
		store:      NewMappingStore(),
		matchedSrc: make(map[*tree.Node]bool),
		matchedDst: make(map[*tree.Node]bool),
		srcIDs:     postOrderIDs(src),
		dstIDs:     postOrderIDs(dst),
		desc:       newDescendantSets(),
		opts:       opts,
	}
	st.maxSize = src.Size()
	if dst.Size() > st.maxSize {
		st.maxSize = dst.Size()
	}
	return st
}

func postOrderIDs(root *tree.Node) map[*tree.Node]int {
	nodes := tree.PostOrder(root)
	ids := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		ids[n] = i
	}
	return ids
}

func (st *matchState) addMapping(src, dst *tree.Node) bool {
	if !st.store.Link(src, dst) {
		return false
	}
	st.matchedSrc[src] = true
	st.matchedDst[dst] = true
	return true
}

// removeMapping unlinks a pair and makes both nodes available again
func (st *matchState) removeMapping(src, dst *tree.Node) {
	if st.store.Unlink(src, dst) {
		delete(st.matchedSrc, src)
		delete(st.matchedDst, dst)
	}
}

// addFullMapping maps two isomorphic subtrees node by node.
func (st *matchState) addFullMapping(src, dst *tree.Node) int {
	srcs, dsts := tree.PreOrder(src), tree.PreOrder(dst)
	added := 0
	for i := range srcs {
		if i < len(dsts) && st.addMapping(srcs[i], dsts[i]) {
			added++
		}
	}
	return added
}

func (st *matchState) allDescendantsMatched(n *tree.Node, matched map[*tree.Node]bool) bool {
	for _, d := range tree.Descendants(n) {
		if !matched[d] {
			return false
		}
	}
	return true
}

// sim ranks an ambiguous candidate pair: parents' descendant overlap first,
// then sibling position, then traversal order.
func (st *matchState) sim(src, dst *tree.Node) float64 {
	var parentSim float64
	switch {
	case src.IsRoot() && dst.IsRoot():
		parentSim = 1
	case src.IsRoot() || dst.IsRoot():
		parentSim = 0
	default:
		parentSim = jaccard(src.Parent(), dst.Parent(), st.store, st.desc)
	}

	var posSim float64
	switch {
	case src.IsRoot() && dst.IsRoot():
		posSim = 1
	case src.IsRoot() || dst.IsRoot():
		posSim = 0
	default:
		siblings := src.Parent().NumChildren()
		if n := dst.Parent().NumChildren(); n > siblings {
			siblings = n
		}
		posSim = 1 - float64(abs(src.PositionInParent()-dst.PositionInParent()))/float64(siblings)
	}

	idSim := 1 - float64(abs(st.srcIDs[src]-st.dstIDs[dst]))/float64(st.maxSize)
	return 100*parentSim + 10*posSim + idSim
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
