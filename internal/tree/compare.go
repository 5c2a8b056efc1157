package tree

// IsMatchable reports whether two nodes may be mapped to each other.
func IsMatchable(a, b *Node) bool {
	return a.typ == b.typ
}

// HasSameTypeAndLabel compares the node payloads, ignoring children.
func HasSameTypeAndLabel(a, b *Node) bool {
	return a.typ == b.typ && a.label == b.label
}

// IsIsomorphic reports whether the two subtrees are clones: same type, label
// and, recursively, the same children. The digest is only a pre-filter.
func IsIsomorphic(a, b *Node) bool {
	if a.Digest() != b.Digest() || a.Size() != b.Size() {
		return false
	}
	return isomorphic(a, b)
}

func isomorphic(a, b *Node) bool {
	if !HasSameTypeAndLabel(a, b) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !isomorphic(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// DeepCopy returns a detached copy of the subtree rooted at n.
func DeepCopy(n *Node) *Node {
	c, _ := CopyPruned(n, nil)
	return c
}

// CopyPruned copies the subtree rooted at n, dropping every descendant for
// which keep returns false together with its own subtree. The root is always
// copied. The returned map sends each copy back to its original node.
func CopyPruned(n *Node, keep func(*Node) bool) (*Node, map[*Node]*Node) {
	origin := make(map[*Node]*Node)
	root := copyInto(n, keep, origin)
	return root, origin
}

func copyInto(n *Node, keep func(*Node) bool, origin map[*Node]*Node) *Node {
	c := NewWithPos(n.typ, n.label, n.pos, n.length)
	origin[c] = n
	c.children = make([]*Node, 0, len(n.children))
	for _, child := range n.children {
		if keep != nil && !keep(child) {
			continue
		}
		cc := copyInto(child, keep, origin)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
