package tree

import (
	"encoding/binary"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// Node is a single element of an ordered, labeled tree.
// Children order is source order and is preserved by every operation.
type Node struct {
	typ      Type
	label    string
	pos      int
	length   int
	parent   *Node
	children []*Node

	// cached metrics, recomputed when dirty
	dirty  bool
	size   int
	height int
	digest uint64
}

// New creates a detached node with the given type and label.
func New(typ Type, label string) *Node {
	return &Node{typ: typ, label: label, dirty: true}
}

// NewWithPos creates a detached node carrying its source span.
func NewWithPos(typ Type, label string, pos, length int) *Node {
	n := New(typ, label)
	n.pos = pos
	n.length = length
	return n
}

// Type returns the node's type code.
func (n *Node) Type() Type { return n.typ }

// Label returns the node's label. An empty label means no label.
func (n *Node) Label() string { return n.label }

// Pos returns the byte offset of the node in its source text.
func (n *Node) Pos() int { return n.pos }

// Length returns the byte length of the node in its source text.
func (n *Node) Length() int { return n.length }

// EndPos returns the offset just past the node.
func (n *Node) EndPos() int { return n.pos + n.length }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Root walks up to the root of the tree containing n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// ChildPosition returns the index of c among n's children, or -1.
func (n *Node) ChildPosition(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// PositionInParent returns the index of n among its siblings, or -1 for a root.
func (n *Node) PositionInParent() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.ChildPosition(n)
}

// SetLabel replaces the label.
func (n *Node) SetLabel(label string) {
	if n.label == label {
		return
	}
	n.label = label
	n.invalidate()
}

// SetPos replaces the source span. Spans do not take part in digests.
func (n *Node) SetPos(pos, length int) {
	n.pos = pos
	n.length = length
}

// AddChild appends c to n's children. c must be detached.
func (n *Node) AddChild(c *Node) {
	n.InsertChild(len(n.children), c)
}

// InsertChild inserts c at index i. c must be detached.
func (n *Node) InsertChild(i int, c *Node) {
	if c.parent != nil {
		panic("tree: InsertChild of attached node")
	}
	if i < 0 || i > len(n.children) {
		panic(fmt.Sprintf("tree: child index %d out of range [0,%d]", i, len(n.children)))
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	c.parent = n
	n.invalidate()
}

// RemoveChild detaches c from n. It reports whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.ChildPosition(c)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
	n.invalidate()
	return true
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// invalidate marks n and its ancestors dirty. A dirty node always has dirty
// ancestors, so the walk stops at the first one already marked.
func (n *Node) invalidate() {
	for p := n; p != nil && !p.dirty; p = p.parent {
		p.dirty = true
	}
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	n.ensure()
	return n.size
}

// Height returns the longest downward path length from n. Leaves have height 0.
func (n *Node) Height() int {
	n.ensure()
	return n.height
}

// Digest returns a content hash over type, label and children's digests.
// Equal digests are treated as a strong hint of isomorphism.
func (n *Node) Digest() uint64 {
	n.ensure()
	return n.digest
}

// Depth returns the distance from the root of the tree containing n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (n *Node) ensure() {
	if !n.dirty {
		return
	}
	size, height := 1, 0
	digests := make([]uint64, len(n.children))
	for i, c := range n.children {
		c.ensure()
		size += c.size
		if c.height+1 > height {
			height = c.height + 1
		}
		digests[i] = c.digest
	}
	n.size = size
	n.height = height
	n.digest = ComputeDigest(n.typ, n.label, digests)
	n.dirty = false
}

// ComputeDigest hashes a node's type and label together with its children's
// digests. Working copies that do not use Node call it to stay comparable.
func ComputeDigest(typ Type, label string, children []uint64) uint64 {
	buf := make([]byte, 0, 16+len(label)+8*len(children))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(typ))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(label)))
	buf = append(buf, label...)
	for _, d := range children {
		buf = binary.LittleEndian.AppendUint64(buf, d)
	}
	sum := blake3.Sum256(buf)
	return binary.LittleEndian.Uint64(sum[:8])
}

// Refresh computes the metrics of every node under root so that the tree can
// afterwards be read concurrently without further writes.
func Refresh(root *Node) {
	if root != nil {
		root.ensure()
	}
}

// String renders the node alone, without children.
func (n *Node) String() string {
	if n.label == "" {
		return fmt.Sprintf("%d [%d,%d]", n.typ, n.pos, n.EndPos())
	}
	return fmt.Sprintf("%d: %s [%d,%d]", n.typ, n.label, n.pos, n.EndPos())
}

// Format renders the subtree in a compact parenthesised form, resolving
// type names through reg when it is non-nil.
func Format(n *Node, reg *TypeRegistry) string {
	var sb strings.Builder
	formatInto(&sb, n, reg)
	return sb.String()
}

func formatInto(sb *strings.Builder, n *Node, reg *TypeRegistry) {
	if reg != nil {
		sb.WriteString(reg.Name(n.typ))
	} else {
		fmt.Fprintf(sb, "%d", n.typ)
	}
	if n.label != "" {
		fmt.Fprintf(sb, "=%q", n.label)
	}
	if len(n.children) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			sb.WriteByte(',')
		}
		formatInto(sb, c, reg)
	}
	sb.WriteByte(')')
}
