package matcher

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/internal/tree"
	"github.com/ludo-technologies/astdiff/internal/tree/treetest"
)

func TestOptimalMatcher_Distance(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		dst      string
		expected float64
	}{
		{name: "identical", src: `a(b,c)`, dst: `a(b,c)`, expected: 0},
		{name: "single insertion", src: `a(b)`, dst: `a(b,c)`, expected: 1},
		{name: "single deletion", src: `a(b(d),c)`, dst: `a(b,c)`, expected: 1},
		{name: "relabel", src: `a(b="1")`, dst: `a(b="2")`, expected: 1},
		{name: "type change is delete plus insert", src: `a(b)`, dst: `a(c)`, expected: 2},
		{name: "flatten", src: `a(b(c,d))`, dst: `a(c,d)`, expected: 1},
	}

	m := NewOptimalMatcher(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := tree.NewTypeRegistry()
			src := tree.MustParse(tt.src, reg)
			dst := tree.MustParse(tt.dst, reg)
			assert.Equal(t, tt.expected, m.Distance(src, dst))
		})
	}
}

func TestOptimalMatcher_DistanceEmptyTrees(t *testing.T) {
	reg := tree.NewTypeRegistry()
	m := NewOptimalMatcher(nil)
	ab := tree.MustParse(`a(b)`, reg)

	assert.Equal(t, 0.0, m.Distance(nil, nil))
	assert.Equal(t, 2.0, m.Distance(nil, ab))
	assert.Equal(t, 2.0, m.Distance(ab, nil))

	store, err := m.Match(nil, ab)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestOptimalMatcher_WeightedCost(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b)`, reg)
	dst := tree.MustParse(`a(b,c)`, reg)

	m := NewOptimalMatcher(NewWeightedCostModel(3, 1, 1, nil))
	assert.Equal(t, 3.0, m.Distance(src, dst))
}

func TestOptimalMatcher_MatchIdentical(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b(c,d),e="x")`, reg)
	dst := tree.DeepCopy(src)

	store, err := NewOptimalMatcher(nil).Match(src, dst)
	require.NoError(t, err)
	assert.Equal(t, src.Size(), store.Len())

	srcNodes, dstNodes := tree.PreOrder(src), tree.PreOrder(dst)
	for i := range srcNodes {
		assert.True(t, store.Has(srcNodes[i], dstNodes[i]), "node %d", i)
	}
}

func TestOptimalMatcher_NeverMapsDifferentTypes(t *testing.T) {
	reg := tree.NewTypeRegistry()
	src := tree.MustParse(`a(b="1",c="2")`, reg)
	dst := tree.MustParse(`a(c="1",b="2")`, reg)

	store, err := NewOptimalMatcher(nil).Match(src, dst)
	require.NoError(t, err)
	for _, m := range store.Mappings() {
		assert.Equal(t, m.Src.Type(), m.Dst.Type())
	}
	assert.True(t, store.Has(src, dst))
}

func TestChooseMirrored(t *testing.T) {
	reg := tree.NewTypeRegistry()

	// a right comb has one long rightmost path, so the mirrored view
	// needs fewer subproblems
	right := tree.MustParse(`a(l1,b(l2,c(l3,d(l4,l5))))`, reg)
	assert.Equal(t, 25, newZsTree(right, false).subproblems())
	assert.Equal(t, 13, newZsTree(right, true).subproblems())

	t1, t2 := chooseMirrored(right, tree.DeepCopy(right))
	assert.True(t, t1.mirrored)
	assert.True(t, t2.mirrored)

	left := tree.MustParse(`a(b(c(d(l5,l4),l3),l2),l1)`, reg)
	t1, t2 = chooseMirrored(left, tree.DeepCopy(left))
	assert.False(t, t1.mirrored)
	assert.False(t, t2.mirrored)
}

func TestOptimalMatcher_OrientationIndependentDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	reg := tree.NewTypeRegistry()
	m := NewOptimalMatcher(nil)

	for i := 0; i < 40; i++ {
		src := treetest.Random(rng, reg, 2+rng.Intn(14), treetest.DefaultAlphabet)
		dst := treetest.Mutate(rng, reg, src, 1+rng.Intn(4), treetest.DefaultAlphabet)

		_, left := m.alignTrees(newZsTree(src, false), newZsTree(dst, false))
		_, mirrored := m.alignTrees(newZsTree(src, true), newZsTree(dst, true))
		assert.InDelta(t, left, mirrored, 1e-9, "pair %d: %s vs %s", i, src, dst)
	}
}

func TestOptimalMatcher_MappingCostMatchesDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	reg := tree.NewTypeRegistry()
	m := NewOptimalMatcher(nil)

	for i := 0; i < 40; i++ {
		src := treetest.Random(rng, reg, 2+rng.Intn(12), treetest.DefaultAlphabet)
		dst := treetest.Mutate(rng, reg, src, 1+rng.Intn(4), treetest.DefaultAlphabet)

		store, distance := m.align(src, dst)

		// unmapped nodes are deleted or inserted, mapped pairs are renamed
		cost := float64(src.Size() + dst.Size() - 2*store.Len())
		for _, p := range store.Mappings() {
			cost += m.costModel.Rename(p.Src, p.Dst)
		}
		assert.InDelta(t, distance, cost, 1e-9, "pair %d: %s vs %s", i, src, dst)
	}
}
