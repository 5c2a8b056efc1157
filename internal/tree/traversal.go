package tree

// PreOrder returns the nodes of the subtree in pre-order.
func PreOrder(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var out []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

// PostOrder returns the nodes of the subtree in post-order.
func PostOrder(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var out []*Node
	type frame struct {
		node *Node
		next int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.children) {
			child := top.node.children[top.next]
			top.next++
			stack = append(stack, frame{node: child})
			continue
		}
		out = append(out, top.node)
		stack = stack[:len(stack)-1]
	}
	return out
}

// BreadthFirst returns the nodes of the subtree level by level.
func BreadthFirst(root *Node) []*Node {
	if root == nil {
		return nil
	}
	out := []*Node{root}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].children...)
	}
	return out
}

// Descendants returns all nodes below n in pre-order, excluding n.
func Descendants(n *Node) []*Node {
	all := PreOrder(n)
	if len(all) == 0 {
		return nil
	}
	return all[1:]
}

// Ancestors returns the parents of n from the closest up to the root.
func Ancestors(n *Node) []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// IsAncestor reports whether a is a proper ancestor of n.
func IsAncestor(a, n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}
