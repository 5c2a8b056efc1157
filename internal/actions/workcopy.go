package actions

import (
	"fmt"

	"github.com/ludo-technologies/astdiff/internal/matcher"
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// workNode is a mutable node of the working copy. Links are arena indices.
type workNode struct {
	typ      tree.Type
	label    string
	pos      int
	length   int
	parent   int
	children []int

	// orig is the source node this copy came from, nil for inserted nodes
	// and the virtual root
	orig *tree.Node
	// dst is the destination partner, nil while unmapped
	dst     *tree.Node
	inOrder bool
}

const noParent = -1

// workCopy is an arena copy of the source tree below a virtual root at
// index 0.
type workCopy struct {
	nodes       []workNode
	virtualRoot int
	byDst       map[*tree.Node]int
}

func newWorkCopy(src, dst *tree.Node, mappings *matcher.MappingStore) (*workCopy, error) {
	w := &workCopy{
		nodes:       []workNode{{typ: tree.NoType, parent: noParent}},
		virtualRoot: 0,
		byDst:       make(map[*tree.Node]int),
	}
	bySrc := make(map[*tree.Node]int)
	if src != nil {
		w.copyFrom(src, w.virtualRoot, bySrc)
	}

	dstNodes := make(map[*tree.Node]bool)
	if dst != nil {
		for _, n := range tree.PreOrder(dst) {
			dstNodes[n] = true
		}
	}
	for _, m := range mappings.Mappings() {
		id, ok := bySrc[m.Src]
		if !ok || !dstNodes[m.Dst] {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidMapping, m.Src, m.Dst)
		}
		w.nodes[id].dst = m.Dst
		w.byDst[m.Dst] = id
	}
	return w, nil
}

func (w *workCopy) copyFrom(n *tree.Node, parent int, bySrc map[*tree.Node]int) {
	id := len(w.nodes)
	w.nodes = append(w.nodes, workNode{
		typ:    n.Type(),
		label:  n.Label(),
		pos:    n.Pos(),
		length: n.Length(),
		parent: parent,
		orig:   n,
	})
	w.nodes[parent].children = append(w.nodes[parent].children, id)
	bySrc[n] = id
	for _, c := range n.Children() {
		w.copyFrom(c, id, bySrc)
	}
}

// ref is the node an action names for the working node id.
func (w *workCopy) ref(id int) *tree.Node {
	n := &w.nodes[id]
	if n.orig != nil {
		return n.orig
	}
	return n.dst
}

func (w *workCopy) insert(x *tree.Node, parent, k int) int {
	id := len(w.nodes)
	w.nodes = append(w.nodes, workNode{
		typ:    x.Type(),
		label:  x.Label(),
		pos:    x.Pos(),
		length: x.Length(),
		parent: noParent,
		dst:    x,
	})
	w.byDst[x] = id
	w.attach(id, parent, k)
	return id
}

func (w *workCopy) move(id, parent, k int) {
	w.detach(id)
	w.attach(id, parent, k)
}

func (w *workCopy) attach(id, parent, k int) {
	p := &w.nodes[parent]
	p.children = append(p.children, 0)
	copy(p.children[k+1:], p.children[k:])
	p.children[k] = id
	w.nodes[id].parent = parent
}

func (w *workCopy) detach(id int) {
	parent := w.nodes[id].parent
	if parent == noParent {
		return
	}
	p := &w.nodes[parent]
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	w.nodes[id].parent = noParent
}

func (w *workCopy) position(id int) int {
	parent := w.nodes[id].parent
	if parent == noParent {
		return -1
	}
	for i, c := range w.nodes[parent].children {
		if c == id {
			return i
		}
	}
	return -1
}

func (w *workCopy) postOrder(root int) []int {
	var out []int
	var walk func(int)
	walk = func(id int) {
		for _, c := range w.nodes[id].children {
			walk(c)
		}
		out = append(out, id)
	}
	walk(root)
	return out
}

// digest hashes the working copy with the same function as tree.Node, so
// the result is comparable with a destination digest.
func (w *workCopy) digest() uint64 {
	digests := make([]uint64, len(w.nodes))
	for _, id := range w.postOrder(w.virtualRoot) {
		n := &w.nodes[id]
		children := make([]uint64, len(n.children))
		for i, c := range n.children {
			children[i] = digests[c]
		}
		digests[id] = tree.ComputeDigest(n.typ, n.label, children)
	}
	return digests[w.virtualRoot]
}
