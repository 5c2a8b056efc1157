package matcher

import (
	"math"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

const costEpsilon = 1e-9

// OptimalMatcher computes a minimum-cost edit mapping between two trees with
// the Zhang-Shasha keyroot dynamic program. Runtime grows roughly with the
// product of the two tree sizes squared, so callers gate it by size.
type OptimalMatcher struct {
	costModel CostModel
}

// NewOptimalMatcher creates a new optimal matcher with the given cost model
func NewOptimalMatcher(costModel CostModel) *OptimalMatcher {
	if costModel == nil {
		costModel = NewUniformCostModel()
	}
	return &OptimalMatcher{costModel: costModel}
}

// Name returns the registry name of the standalone optimal strategy.
func (m *OptimalMatcher) Name() string { return StrategyOptimal }

// Match aligns the two trees. Nodes of different types are never mapped.
func (m *OptimalMatcher) Match(src, dst *tree.Node) (*MappingStore, error) {
	if src == nil || dst == nil {
		return NewMappingStore(), nil
	}
	store, _ := m.align(src, dst)
	return store, nil
}

// Distance returns the edit distance between the two trees.
func (m *OptimalMatcher) Distance(src, dst *tree.Node) float64 {
	if src == nil && dst == nil {
		return 0
	}
	if src == nil {
		return m.totalCost(dst, m.costModel.Insert)
	}
	if dst == nil {
		return m.totalCost(src, m.costModel.Delete)
	}
	_, d := m.align(src, dst)
	return d
}

func (m *OptimalMatcher) totalCost(root *tree.Node, cost func(*tree.Node) float64) float64 {
	total := 0.0
	for _, n := range tree.PreOrder(root) {
		total += cost(n)
	}
	return total
}

// zsTree is a 1-based post-order view of a tree. When mirrored, children are
// visited right to left, which turns the leftmost-path decomposition into a
// rightmost-path one.
type zsTree struct {
	nodes    []*tree.Node
	lld      []int
	keyRoots []int
	mirrored bool
}

func newZsTree(root *tree.Node, mirrored bool) *zsTree {
	t := &zsTree{nodes: []*tree.Node{nil}, lld: []int{0}, mirrored: mirrored}
	t.index(root, mirrored)

	n := len(t.nodes) - 1
	seen := make(map[int]bool, n)
	for i := n; i >= 1; i-- {
		if !seen[t.lld[i]] {
			seen[t.lld[i]] = true
			t.keyRoots = append(t.keyRoots, i)
		}
	}
	// ascending order, so smaller subproblems are solved first
	for i, j := 0, len(t.keyRoots)-1; i < j; i, j = i+1, j-1 {
		t.keyRoots[i], t.keyRoots[j] = t.keyRoots[j], t.keyRoots[i]
	}
	return t
}

func (t *zsTree) index(n *tree.Node, mirrored bool) int {
	children := n.Children()
	first := 0
	for k := range children {
		c := children[k]
		if mirrored {
			c = children[len(children)-1-k]
		}
		id := t.index(c, mirrored)
		if k == 0 {
			first = id
		}
	}
	t.nodes = append(t.nodes, n)
	id := len(t.nodes) - 1
	if len(children) == 0 {
		t.lld = append(t.lld, id)
	} else {
		t.lld = append(t.lld, t.lld[first])
	}
	return id
}

func (t *zsTree) size() int { return len(t.nodes) - 1 }

// subproblems estimates the work of the keyroot decomposition.
func (t *zsTree) subproblems() int {
	total := 0
	for _, kr := range t.keyRoots {
		total += kr - t.lld[kr] + 1
	}
	return total
}

// chooseMirrored picks one decomposition direction, left or right paths, for
// the whole pair: the one with fewer relevant subproblems. The choice is not
// revisited per subtree.
func chooseMirrored(src, dst *tree.Node) (*zsTree, *zsTree) {
	l1, l2 := newZsTree(src, false), newZsTree(dst, false)
	r1, r2 := newZsTree(src, true), newZsTree(dst, true)
	if r1.subproblems()*r2.subproblems() < l1.subproblems()*l2.subproblems() {
		return r1, r2
	}
	return l1, l2
}

type zsRun struct {
	costModel  CostModel
	t1, t2     *zsTree
	treeDist   [][]float64
	forestDist [][]float64
}

func (m *OptimalMatcher) align(src, dst *tree.Node) (*MappingStore, float64) {
	return m.alignTrees(chooseMirrored(src, dst))
}

func (m *OptimalMatcher) alignTrees(t1, t2 *zsTree) (*MappingStore, float64) {
	run := &zsRun{
		costModel:  m.costModel,
		t1:         t1,
		t2:         t2,
		treeDist:   newMatrix(t1.size()+1, t2.size()+1),
		forestDist: newMatrix(t1.size()+1, t2.size()+1),
	}
	for _, i := range t1.keyRoots {
		for _, j := range t2.keyRoots {
			run.computeForestDist(i, j)
		}
	}
	distance := run.treeDist[t1.size()][t2.size()]
	return run.backtrack(), distance
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols]
	}
	return m
}

func (r *zsRun) del(i int) float64    { return r.costModel.Delete(r.t1.nodes[i]) }
func (r *zsRun) ins(j int) float64    { return r.costModel.Insert(r.t2.nodes[j]) }
func (r *zsRun) ren(i, j int) float64 { return r.costModel.Rename(r.t1.nodes[i], r.t2.nodes[j]) }

func (r *zsRun) computeForestDist(i, j int) {
	lld1, lld2 := r.t1.lld, r.t2.lld
	fd, td := r.forestDist, r.treeDist
	ioff, joff := lld1[i]-1, lld2[j]-1

	fd[ioff][joff] = 0
	for di := lld1[i]; di <= i; di++ {
		fd[di][joff] = fd[di-1][joff] + r.del(di)
	}
	for dj := lld2[j]; dj <= j; dj++ {
		fd[ioff][dj] = fd[ioff][dj-1] + r.ins(dj)
	}

	for di := lld1[i]; di <= i; di++ {
		for dj := lld2[j]; dj <= j; dj++ {
			costDel := fd[di-1][dj] + r.del(di)
			costIns := fd[di][dj-1] + r.ins(dj)
			if lld1[di] == lld1[i] && lld2[dj] == lld2[j] {
				costRen := fd[di-1][dj-1] + r.ren(di, dj)
				fd[di][dj] = math.Min(math.Min(costDel, costIns), costRen)
				td[di][dj] = fd[di][dj]
			} else {
				costTree := fd[lld1[di]-1][lld2[dj]-1] + td[di][dj]
				fd[di][dj] = math.Min(math.Min(costDel, costIns), costTree)
			}
		}
	}
}

func (r *zsRun) backtrack() *MappingStore {
	store := NewMappingStore()
	lld1, lld2 := r.t1.lld, r.t2.lld
	fd := r.forestDist

	type pair struct{ row, col int }
	stack := []pair{{r.t1.size(), r.t2.size()}}
	rootPair := true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lastRow, lastCol := p.row, p.col
		firstRow, firstCol := lld1[lastRow]-1, lld2[lastCol]-1

		// the root pair's forest distances are still in place from the
		// last keyroot pass; every other pair must be recomputed
		if !rootPair {
			r.computeForestDist(lastRow, lastCol)
		}
		rootPair = false

		row, col := lastRow, lastCol
		for row > firstRow || col > firstCol {
			switch {
			case row > firstRow && approxEqual(fd[row-1][col]+r.del(row), fd[row][col]):
				row--
			case col > firstCol && approxEqual(fd[row][col-1]+r.ins(col), fd[row][col]):
				col--
			default:
				if lld1[row]-1 == lld1[lastRow]-1 && lld2[col]-1 == lld2[lastCol]-1 {
					n1, n2 := r.t1.nodes[row], r.t2.nodes[col]
					if tree.IsMatchable(n1, n2) {
						store.Link(n1, n2)
					}
					row--
					col--
				} else {
					stack = append(stack, pair{row, col})
					row = lld1[row] - 1
					col = lld2[col] - 1
				}
			}
		}
	}
	return store
}

func approxEqual(a, b float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return a == b
	}
	return math.Abs(a-b) < costEpsilon
}
