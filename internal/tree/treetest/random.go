// Package treetest builds random trees and random edits of them for
// property-style tests of matchers and edit scripts.
package treetest

import (
	"fmt"
	"math/rand"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Alphabet bounds the variety of generated nodes. Small alphabets produce
// many identical subtrees, which exercises disambiguation.
type Alphabet struct {
	Types  int
	Labels int
}

// DefaultAlphabet is small enough to create ambiguity but not so small that
// every leaf is a clone.
var DefaultAlphabet = Alphabet{Types: 4, Labels: 3}

// Random builds a tree with exactly size nodes.
func Random(rng *rand.Rand, reg *tree.TypeRegistry, size int, alpha Alphabet) *tree.Node {
	root := randomNode(rng, reg, alpha)
	nodes := []*tree.Node{root}
	for len(nodes) < size {
		parent := nodes[rng.Intn(len(nodes))]
		child := randomNode(rng, reg, alpha)
		parent.InsertChild(rng.Intn(parent.NumChildren()+1), child)
		nodes = append(nodes, child)
	}
	return root
}

func randomNode(rng *rand.Rand, reg *tree.TypeRegistry, alpha Alphabet) *tree.Node {
	typ := reg.Register(fmt.Sprintf("t%d", rng.Intn(alpha.Types)))
	label := ""
	if l := rng.Intn(alpha.Labels + 1); l > 0 {
		label = fmt.Sprintf("l%d", l)
	}
	return tree.New(typ, label)
}

// Mutate returns a deep copy of root with the given number of random edits
// applied: relabels, leaf insertions, leaf deletions and subtree moves.
// The root itself is never removed or moved.
func Mutate(rng *rand.Rand, reg *tree.TypeRegistry, root *tree.Node, edits int, alpha Alphabet) *tree.Node {
	out := tree.DeepCopy(root)
	for i := 0; i < edits; i++ {
		nodes := tree.PreOrder(out)
		switch rng.Intn(4) {
		case 0:
			n := nodes[rng.Intn(len(nodes))]
			n.SetLabel(fmt.Sprintf("l%d", rng.Intn(alpha.Labels+3)))
		case 1:
			parent := nodes[rng.Intn(len(nodes))]
			parent.InsertChild(rng.Intn(parent.NumChildren()+1), randomNode(rng, reg, alpha))
		case 2:
			if len(nodes) < 2 {
				continue
			}
			n := nodes[1+rng.Intn(len(nodes)-1)]
			if n.IsLeaf() {
				n.Detach()
			}
		case 3:
			if len(nodes) < 3 {
				continue
			}
			n := nodes[1+rng.Intn(len(nodes)-1)]
			target := nodes[rng.Intn(len(nodes))]
			if target == n || tree.IsAncestor(n, target) {
				continue
			}
			n.Detach()
			target.InsertChild(rng.Intn(target.NumChildren()+1), n)
		}
	}
	return out
}
