package actions

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// ErrInvalidScript reports an action that cannot be replayed on the tree.
var ErrInvalidScript = errors.New("invalid edit script")

// Apply replays script on a deep copy of src and returns the resulting tree.
// src is not modified. A nil result means the script deleted everything.
func Apply(src *tree.Node, script *EditScript) (*tree.Node, error) {
	top := tree.New(tree.NoType, "")
	resolved := make(map[*tree.Node]*tree.Node)
	if src != nil {
		cpy := tree.DeepCopy(src)
		srcNodes, cpyNodes := tree.PreOrder(src), tree.PreOrder(cpy)
		for i := range srcNodes {
			resolved[srcNodes[i]] = cpyNodes[i]
		}
		top.AddChild(cpy)
	}

	lookup := func(n *tree.Node) (*tree.Node, bool) {
		if n == nil {
			return top, true
		}
		c, ok := resolved[n]
		return c, ok
	}

	for i, a := range script.Actions {
		fail := func(format string, args ...interface{}) error {
			return fmt.Errorf("%w: action %d (%s): %s", ErrInvalidScript, i, a.Kind, fmt.Sprintf(format, args...))
		}

		switch a.Kind {
		case Insert:
			parent, ok := lookup(a.Parent)
			if !ok {
				return nil, fail("unknown parent")
			}
			if a.Position < 0 || a.Position > parent.NumChildren() {
				return nil, fail("position %d out of range", a.Position)
			}
			n := tree.NewWithPos(a.Node.Type(), a.Node.Label(), a.Node.Pos(), a.Node.Length())
			parent.InsertChild(a.Position, n)
			resolved[a.Node] = n

		case Delete:
			n, ok := resolved[a.Node]
			if !ok {
				return nil, fail("unknown node")
			}
			if !n.IsLeaf() {
				return nil, fail("node still has %d children", n.NumChildren())
			}
			n.Detach()
			delete(resolved, a.Node)

		case Update:
			n, ok := resolved[a.Node]
			if !ok {
				return nil, fail("unknown node")
			}
			n.SetLabel(a.NewLabel)

		case Move, Permute:
			n, ok := resolved[a.Node]
			if !ok {
				return nil, fail("unknown node")
			}
			parent, ok := lookup(a.Parent)
			if !ok {
				return nil, fail("unknown parent")
			}
			if parent == n || tree.IsAncestor(n, parent) {
				return nil, fail("cannot move a node below itself")
			}
			n.Detach()
			if a.Position < 0 || a.Position > parent.NumChildren() {
				return nil, fail("position %d out of range", a.Position)
			}
			parent.InsertChild(a.Position, n)

		default:
			return nil, fail("unsupported kind")
		}
	}

	switch top.NumChildren() {
	case 0:
		return nil, nil
	case 1:
		root := top.Child(0)
		root.Detach()
		return root, nil
	default:
		return nil, fmt.Errorf("%w: script leaves %d roots", ErrInvalidScript, top.NumChildren())
	}
}
