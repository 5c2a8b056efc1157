package matcher

import (
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// BottomUpVariant selects the scoring and refinement policy of the
// bottom-up phase.
type BottomUpVariant int

const (
	// BottomUpGreedy scores with Dice and refines only partially covered pairs
	BottomUpGreedy BottomUpVariant = iota
	// BottomUpComplete scores with Jaccard and refines every accepted pair
	BottomUpComplete
)

func (v BottomUpVariant) String() string {
	switch v {
	case BottomUpGreedy:
		return "greedy"
	case BottomUpComplete:
		return "complete"
	default:
		return "unknown"
	}
}

type bottomUp struct {
	variant BottomUpVariant
	optimal *OptimalMatcher
}

func (b *bottomUp) score(st *matchState, src, dst *tree.Node) float64 {
	if b.variant == BottomUpComplete {
		return jaccard(src, dst, st.store, st.desc)
	}
	return dice(src, dst, st.store, st.desc)
}

func (b *bottomUp) shouldRefine(st *matchState, src, dst *tree.Node) bool {
	if b.variant == BottomUpComplete {
		return true
	}
	return !(st.allDescendantsMatched(src, st.matchedSrc) || st.allDescendantsMatched(dst, st.matchedDst))
}

// match sweeps the source tree in post-order and maps unmatched internal
// nodes to the most similar destination candidate.
func (b *bottomUp) match(st *matchState) {
	before := st.store.Len()
	for _, t := range tree.PostOrder(st.src) {
		if t == st.src {
			b.matchRoots(st)
			break
		}
		if st.matchedSrc[t] || t.IsLeaf() {
			continue
		}

		var best *tree.Node
		bestScore := -1.0
		for _, c := range b.candidates(st, t) {
			if s := b.score(st, t, c); s > bestScore {
				best, bestScore = c, s
			}
		}
		if best == nil || bestScore < st.opts.SimThreshold {
			continue
		}

		st.addMapping(t, best)
		if b.shouldRefine(st, t, best) {
			b.lastChanceMatch(st, t, best)
		}
		for _, n := range tree.PreOrder(t) {
			st.matchedSrc[n] = true
		}
		for _, n := range tree.PreOrder(best) {
			st.matchedDst[n] = true
		}
	}
	st.stats.BottomUpMappings = st.store.Len() - before
}

// matchRoots anchors the two roots. Roots of different types stay unmapped.
// A root that the subtree phase mapped into the middle of the other tree is
// released first.
func (b *bottomUp) matchRoots(st *matchState) {
	src, dst := st.src, st.dst
	if !tree.IsMatchable(src, dst) || st.store.Has(src, dst) {
		return
	}
	if other := st.store.Dst(src); other != nil {
		st.removeMapping(src, other)
	}
	if other := st.store.Src(dst); other != nil {
		st.removeMapping(other, dst)
	}
	st.addMapping(src, dst)
	if b.shouldRefine(st, src, dst) {
		b.lastChanceMatch(st, src, dst)
	}
}

// candidates returns the unmatched, same-typed, non-root destination
// ancestors of the images of t's mapped descendants.
func (b *bottomUp) candidates(st *matchState, t *tree.Node) []*tree.Node {
	var out []*tree.Node
	visited := make(map[*tree.Node]bool)
	for _, d := range tree.Descendants(t) {
		seed := st.store.Dst(d)
		if seed == nil {
			continue
		}
		for p := seed.Parent(); p != nil; p = p.Parent() {
			if visited[p] {
				break
			}
			visited[p] = true
			if p.Type() == t.Type() && !st.matchedDst[p] && !p.IsRoot() {
				out = append(out, p)
			}
		}
	}
	return out
}

// lastChanceMatch runs the optimal matcher on copies of both subtrees with
// already matched nodes pruned, and keeps the recovered pairs whose parents
// agree on type. It runs when either pruned side is within the threshold.
func (b *bottomUp) lastChanceMatch(st *matchState, src, dst *tree.Node) {
	cSrc, srcOrigin := tree.CopyPruned(src, func(n *tree.Node) bool { return !st.matchedSrc[n] })
	cDst, dstOrigin := tree.CopyPruned(dst, func(n *tree.Node) bool { return !st.matchedDst[n] })

	limit := st.opts.SizeThreshold
	if cSrc.Size() > limit && cDst.Size() > limit {
		st.stats.OptimalSkipped++
		st.opts.Logger.Printf("optimal matching skipped: pruned subtree sizes %d/%d both exceed threshold %d",
			cSrc.Size(), cDst.Size(), limit)
		return
	}
	st.stats.OptimalRuns++

	zs, _ := b.optimal.Match(cSrc, cDst)
	for _, m := range zs.Mappings() {
		left, right := srcOrigin[m.Src], dstOrigin[m.Dst]
		if left == src || right == dst {
			continue
		}
		if st.matchedSrc[left] || st.matchedDst[right] {
			continue
		}
		if !tree.IsMatchable(left, right) {
			continue
		}
		if left.Parent().Type() != right.Parent().Type() {
			continue
		}
		if st.addMapping(left, right) {
			st.stats.RecoveredMappings++
		}
	}
}
