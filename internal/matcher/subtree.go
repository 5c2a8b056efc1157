package matcher

import (
	"sort"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// SubtreeVariant selects how ambiguous top-down candidates are resolved.
type SubtreeVariant int

const (
	// SubtreeGreedy ranks each ambiguous group by similarity and accepts greedily
	SubtreeGreedy SubtreeVariant = iota
	// SubtreeClique groups candidates by digest and resolves deep, large groups first
	SubtreeClique
	// SubtreeHungarian solves each ambiguous group as an assignment problem
	SubtreeHungarian
)

func (v SubtreeVariant) String() string {
	switch v {
	case SubtreeGreedy:
		return "greedy"
	case SubtreeClique:
		return "clique"
	case SubtreeHungarian:
		return "hungarian"
	default:
		return "unknown"
	}
}

// hungarianCostBase is larger than any sim score, so costs stay positive.
const hungarianCostBase = 111.0

// priorityTreeList buckets pending subtrees by height.
type priorityTreeList struct {
	buckets   [][]*tree.Node
	current   int
	minHeight int
}

func newPriorityTreeList(root *tree.Node, minHeight int) *priorityTreeList {
	l := &priorityTreeList{
		buckets:   make([][]*tree.Node, root.Height()+1),
		current:   -1,
		minHeight: minHeight,
	}
	l.push(root)
	return l
}

func (l *priorityTreeList) push(n *tree.Node) {
	h := n.Height()
	if h < l.minHeight {
		return
	}
	l.buckets[h] = append(l.buckets[h], n)
	if h > l.current {
		l.current = h
	}
}

// peekHeight returns the largest pending height, or -1 when empty.
func (l *priorityTreeList) peekHeight() int { return l.current }

func (l *priorityTreeList) pop() []*tree.Node {
	if l.current < 0 {
		return nil
	}
	nodes := l.buckets[l.current]
	l.buckets[l.current] = nil
	l.updateHeight()
	return nodes
}

func (l *priorityTreeList) updateHeight() {
	for l.current >= 0 && len(l.buckets[l.current]) == 0 {
		l.current--
	}
}

func (l *priorityTreeList) open(n *tree.Node) {
	for _, c := range n.Children() {
		l.push(c)
	}
}

func (l *priorityTreeList) openAll(nodes []*tree.Node) {
	for _, n := range nodes {
		l.open(n)
	}
}

// collectCandidates finds every pair of isomorphic subtrees at equal
// heights, descending from the roots and opening non-matching subtrees.
func collectCandidates(st *matchState) *MultiMappingStore {
	multi := NewMultiMappingStore()
	srcs := newPriorityTreeList(st.src, st.opts.MinHeight)
	dsts := newPriorityTreeList(st.dst, st.opts.MinHeight)

	for srcs.peekHeight() != -1 && dsts.peekHeight() != -1 {
		for srcs.peekHeight() != dsts.peekHeight() {
			if srcs.peekHeight() > dsts.peekHeight() {
				srcs.openAll(srcs.pop())
			} else {
				dsts.openAll(dsts.pop())
			}
		}
		if srcs.peekHeight() == -1 {
			break
		}

		hs, hd := srcs.pop(), dsts.pop()
		byDigest := make(map[uint64][]int, len(hd))
		for j, d := range hd {
			byDigest[d.Digest()] = append(byDigest[d.Digest()], j)
		}

		markedSrc := make([]bool, len(hs))
		markedDst := make([]bool, len(hd))
		for i, s := range hs {
			for _, j := range byDigest[s.Digest()] {
				if tree.IsIsomorphic(s, hd[j]) {
					multi.Link(s, hd[j])
					markedSrc[i] = true
					markedDst[j] = true
				}
			}
		}
		for i, s := range hs {
			if !markedSrc[i] {
				srcs.open(s)
			}
		}
		for j, d := range hd {
			if !markedDst[j] {
				dsts.open(d)
			}
		}
	}
	return multi
}

// matchSubtrees runs the top-down phase and reduces the candidates to a
// bijection with the selected variant.
func matchSubtrees(st *matchState, variant SubtreeVariant) {
	multi := collectCandidates(st)
	st.stats.SubtreeCandidates = multi.Len()
	before := st.store.Len()

	switch variant {
	case SubtreeClique:
		filterCliques(st, multi)
	case SubtreeHungarian:
		filterHungarian(st, multi)
	default:
		filterGreedy(st, multi)
	}
	st.stats.SubtreeMappings = st.store.Len() - before
}

// ambiguousGroups maps unique candidates right away and returns the
// remaining candidates as complete bipartite groups.
func ambiguousGroups(st *matchState, multi *MultiMappingStore) [][]Mapping {
	var groups [][]Mapping
	ignored := make(map[*tree.Node]bool)
	for _, src := range multi.SrcKeys() {
		if multi.IsSrcUnique(src) {
			st.addFullMapping(src, multi.Dsts(src)[0])
			continue
		}
		if ignored[src] {
			continue
		}
		adsts := multi.Dsts(src)
		asrcs := multi.Srcs(adsts[0])
		group := make([]Mapping, 0, len(asrcs)*len(adsts))
		for _, as := range asrcs {
			for _, ad := range adsts {
				group = append(group, Mapping{Src: as, Dst: ad})
			}
			ignored[as] = true
		}
		groups = append(groups, group)
	}
	return groups
}

type scoredMapping struct {
	Mapping
	score float64
}

// acceptGreedily maps the best-scoring pairs first, skipping any pair that
// reuses a node already consumed.
func acceptGreedily(st *matchState, candidates []Mapping) {
	scored := make([]scoredMapping, len(candidates))
	for i, m := range candidates {
		scored[i] = scoredMapping{Mapping: m, score: st.sim(m.Src, m.Dst)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	srcIgnored := make(map[*tree.Node]bool)
	dstIgnored := make(map[*tree.Node]bool)
	for _, m := range scored {
		if srcIgnored[m.Src] || dstIgnored[m.Dst] {
			continue
		}
		if st.store.HasSrc(m.Src) || st.store.HasDst(m.Dst) || !tree.IsIsomorphic(m.Src, m.Dst) {
			continue
		}
		st.addFullMapping(m.Src, m.Dst)
		srcIgnored[m.Src] = true
		dstIgnored[m.Dst] = true
	}
}

func filterGreedy(st *matchState, multi *MultiMappingStore) {
	var ambiguous []Mapping
	for _, group := range ambiguousGroups(st, multi) {
		ambiguous = append(ambiguous, group...)
	}
	acceptGreedily(st, ambiguous)
}

type clique struct {
	srcs []*tree.Node
	dsts []*tree.Node
}

func (c *clique) minDepth() int {
	min := -1
	for _, list := range [][]*tree.Node{c.srcs, c.dsts} {
		for _, n := range list {
			if d := n.Depth(); min < 0 || d < min {
				min = d
			}
		}
	}
	return min
}

func (c *clique) size() int { return len(c.srcs) + len(c.dsts) }

func filterCliques(st *matchState, multi *MultiMappingStore) {
	index := make(map[uint64]*clique)
	var order []*clique
	seenSrc := make(map[*tree.Node]bool)
	seenDst := make(map[*tree.Node]bool)
	for _, m := range multi.Mappings() {
		key := m.Src.Digest()
		c, ok := index[key]
		if !ok {
			c = &clique{}
			index[key] = c
			order = append(order, c)
		}
		if !seenSrc[m.Src] {
			seenSrc[m.Src] = true
			c.srcs = append(c.srcs, m.Src)
		}
		if !seenDst[m.Dst] {
			seenDst[m.Dst] = true
			c.dsts = append(c.dsts, m.Dst)
		}
	}

	var ambiguous []*clique
	for _, c := range order {
		if len(c.srcs) == 1 && len(c.dsts) == 1 {
			st.addFullMapping(c.srcs[0], c.dsts[0])
			continue
		}
		ambiguous = append(ambiguous, c)
	}

	sort.SliceStable(ambiguous, func(i, j int) bool {
		di, dj := ambiguous[i].minDepth(), ambiguous[j].minDepth()
		if di != dj {
			return di > dj
		}
		return ambiguous[i].size() > ambiguous[j].size()
	})

	for _, c := range ambiguous {
		pairs := make([]Mapping, 0, len(c.srcs)*len(c.dsts))
		for _, s := range c.srcs {
			for _, d := range c.dsts {
				pairs = append(pairs, Mapping{Src: s, Dst: d})
			}
		}
		acceptGreedily(st, pairs)
	}
}

func filterHungarian(st *matchState, multi *MultiMappingStore) {
	groups := ambiguousGroups(st, multi)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i][0].Src.Size() > groups[j][0].Src.Size()
	})

	for _, group := range groups {
		var srcs, dsts []*tree.Node
		srcIdx := make(map[*tree.Node]int)
		dstIdx := make(map[*tree.Node]int)
		for _, m := range group {
			if _, ok := srcIdx[m.Src]; !ok {
				srcIdx[m.Src] = len(srcs)
				srcs = append(srcs, m.Src)
			}
			if _, ok := dstIdx[m.Dst]; !ok {
				dstIdx[m.Dst] = len(dsts)
				dsts = append(dsts, m.Dst)
			}
		}

		cost := make([][]float64, len(srcs))
		for i, s := range srcs {
			cost[i] = make([]float64, len(dsts))
			for j, d := range dsts {
				cost[i][j] = hungarianCostBase - st.sim(s, d)
			}
		}

		for i, j := range solveAssignment(cost) {
			if j < 0 {
				continue
			}
			s, d := srcs[i], dsts[j]
			if st.store.HasSrc(s) || st.store.HasDst(d) || !tree.IsIsomorphic(s, d) {
				continue
			}
			st.addFullMapping(s, d)
		}
	}
}
