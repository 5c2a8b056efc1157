package matcher

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

func TestBottomUp_OptimalAtSizeThreshold(t *testing.T) {
	tests := []struct {
		name          string
		src, dst      string
		sizeThreshold int
		runs          int
		skipped       int
		recovered     int
		mappings      int
	}{
		{
			name: "exactly at threshold runs",
			src:  `a(b="1",c="2",d="3")`, dst: `a(b="x",c="y",d="z")`,
			sizeThreshold: 4, runs: 1, skipped: 0, recovered: 3, mappings: 4,
		},
		{
			name: "both sides over threshold skips",
			src:  `a(b="1",c="2",d="3")`, dst: `a(b="x",c="y",d="z")`,
			sizeThreshold: 3, runs: 0, skipped: 1, recovered: 0, mappings: 1,
		},
		{
			name: "small source against a grown target runs",
			src:  `a(b="1",c="2")`, dst: `a(b="x",c="y",e(f(g)),h(i))`,
			sizeThreshold: 3, runs: 1, skipped: 0, recovered: 2, mappings: 3,
		},
		{
			name: "small target against a grown source runs",
			src:  `a(b="x",c="y",e(f(g)),h(i))`, dst: `a(b="1",c="2")`,
			sizeThreshold: 3, runs: 1, skipped: 0, recovered: 2, mappings: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := tree.NewTypeRegistry()
			src := tree.MustParse(tt.src, reg)
			dst := tree.MustParse(tt.dst, reg)

			var logs bytes.Buffer
			opts := Options{SizeThreshold: tt.sizeThreshold, Logger: log.New(&logs, "", 0)}
			res, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, opts, DefaultFastSizeThreshold).MatchWithStats(src, dst)
			require.NoError(t, err)

			assert.Equal(t, tt.runs, res.Stats.OptimalRuns)
			assert.Equal(t, tt.skipped, res.Stats.OptimalSkipped)
			assert.Equal(t, tt.recovered, res.Stats.RecoveredMappings)
			assert.Equal(t, tt.mappings, res.Mappings.Len())
			assert.True(t, res.Mappings.Has(src, dst))
			if tt.skipped > 0 {
				assert.Contains(t, logs.String(), "optimal matching skipped")
			} else {
				assert.Empty(t, logs.String())
				assert.True(t, res.Mappings.Has(src.Child(0), dst.Child(0)))
				assert.True(t, res.Mappings.Has(src.Child(1), dst.Child(1)))
			}
		})
	}
}

func TestBottomUp_InnerNodeMatchedByDice(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(f(x,y,z),k)`, reg)
	dst := tree.MustParse(`a(k,g(w),f(x,y,q))`, reg)

	res, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{}, DefaultFastSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)

	f, df := src.Child(0), dst.Child(2)
	assert.True(t, res.Mappings.Has(f, df))
	assert.False(t, res.Mappings.HasSrc(f.Child(2)), "z and q have different types")
	assert.False(t, res.Mappings.HasDst(dst.Child(1)))
	assert.Equal(t, 2, res.Stats.BottomUpMappings, "f and the root")
}

func TestBottomUp_LowScoreRecoveredAtRoot(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(f(x,p,q,r))`, reg)
	dst := tree.MustParse(`a(f(x,s,t,u),v)`, reg)

	res, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{}, DefaultFastSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)

	// dice(f, f') = 2*1/(4+4) is below the threshold, so f is only
	// found by the optimal pass under the roots
	assert.True(t, res.Mappings.Has(src.Child(0), dst.Child(0)))
	assert.Equal(t, 1, res.Stats.RecoveredMappings)
	assert.Equal(t, 1, res.Stats.OptimalRuns)
	assert.True(t, res.Mappings.Has(src, dst))
}

func TestBottomUp_HigherThresholdRejects(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(f(x,y,z),k)`, reg)
	dst := tree.MustParse(`a(k,g(w),f(x,y,q))`, reg)

	res, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{SimThreshold: 0.9}, DefaultFastSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)

	// f is rejected by score, then recovered by the root refinement
	assert.Equal(t, 1, res.Stats.BottomUpMappings-res.Stats.RecoveredMappings)
	assert.True(t, res.Mappings.Has(src.Child(0), dst.Child(2)))
}

func TestBottomUp_CompleteAlwaysRefines(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b(c),d)`, reg)
	dst := tree.MustParse(`a(b(c),e,d)`, reg)

	greedy, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{}, DefaultFastSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)
	complete, err := NewComposite(StrategyThorough, SubtreeClique, BottomUpComplete, Options{}, DefaultThoroughSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)

	assert.Equal(t, 0, greedy.Stats.OptimalRuns, "source side is fully covered")
	assert.Equal(t, 1, complete.Stats.OptimalRuns)
	assert.Equal(t, greedy.Mappings.Len(), complete.Mappings.Len())
}

func TestBottomUp_RootReleasedFromInnerMapping(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b)`, reg)
	dst := tree.MustParse(`a(a(b))`, reg)

	res, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{}, DefaultFastSizeThreshold).MatchWithStats(src, dst)
	require.NoError(t, err)

	assert.True(t, res.Mappings.Has(src, dst))
	assert.False(t, res.Mappings.HasDst(dst.Child(0)))
	assert.True(t, res.Mappings.Has(src.Child(0), dst.Child(0).Child(0)))
}

func TestBottomUp_ReleasedNodeBecomesAvailable(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b)`, reg)
	dst := tree.MustParse(`a(a(b))`, reg)

	st := newMatchState(src, dst, Options{}.withDefaults(DefaultFastSizeThreshold))
	matchSubtrees(st, SubtreeGreedy)
	inner := dst.Child(0)
	require.True(t, st.store.Has(src, inner))

	bu := &bottomUp{variant: BottomUpGreedy, optimal: NewOptimalMatcher(nil)}
	bu.matchRoots(st)

	assert.True(t, st.store.Has(src, dst))
	assert.False(t, st.store.HasDst(inner))
	assert.False(t, st.matchedDst[inner], "unlinked node must not stay marked")
	assert.True(t, st.matchedSrc[src])
	assert.True(t, st.matchedDst[dst])
}

func TestBottomUp_RootsOfDifferentTypesStayUnmapped(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b)`, reg)
	dst := tree.MustParse(`z(b)`, reg)

	store, err := NewComposite(StrategyFast, SubtreeGreedy, BottomUpGreedy, Options{}, DefaultFastSizeThreshold).Match(src, dst)
	require.NoError(t, err)

	assert.False(t, store.HasSrc(src))
	assert.True(t, store.Has(src.Child(0), dst.Child(0)))
}

func TestSimilarityCoefficients(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`f(x,y,z)`, reg)
	dst := tree.MustParse(`f(x,y,q,r)`, reg)
	store := NewMappingStore()
	store.Link(src.Child(0), dst.Child(0))
	store.Link(src.Child(1), dst.Child(1))

	assert.Equal(t, 2, CommonDescendants(src, dst, store))
	assert.InDelta(t, 4.0/7.0, Dice(src, dst, store), 1e-9)
	assert.InDelta(t, 2.0/5.0, Jaccard(src, dst, store), 1e-9)
	assert.InDelta(t, 2.0/4.0, Chawathe(src, dst, store), 1e-9)

	leaf := tree.MustParse(`x`, reg)
	assert.Equal(t, 0.0, Dice(leaf, leaf, store))
	assert.Equal(t, 0.0, Jaccard(leaf, leaf, store))
}
