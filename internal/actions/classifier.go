package actions

import (
	"github.com/ludo-technologies/astdiff/internal/matcher"
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Classification buckets the nodes touched by a script. Source-side sets
// hold source nodes and destination-side sets hold destination nodes.
type Classification struct {
	DeletedSrc  map[*tree.Node]bool
	UpdatedSrc  map[*tree.Node]bool
	MovedSrc    map[*tree.Node]bool
	InsertedDst map[*tree.Node]bool
	UpdatedDst  map[*tree.Node]bool
	MovedDst    map[*tree.Node]bool

	// DeletedRoots and InsertedRoots keep only the topmost node of each
	// deleted or inserted subtree, in script order.
	DeletedRoots  []*tree.Node
	InsertedRoots []*tree.Node
}

// Classify groups the nodes of script by kind. Permutes count as moves.
func Classify(script *EditScript, mappings *matcher.MappingStore) *Classification {
	c := &Classification{
		DeletedSrc:  make(map[*tree.Node]bool),
		UpdatedSrc:  make(map[*tree.Node]bool),
		MovedSrc:    make(map[*tree.Node]bool),
		InsertedDst: make(map[*tree.Node]bool),
		UpdatedDst:  make(map[*tree.Node]bool),
		MovedDst:    make(map[*tree.Node]bool),
	}
	if script == nil {
		return c
	}

	for _, a := range script.Actions {
		switch a.Kind {
		case Insert:
			c.InsertedDst[a.Node] = true
		case Delete:
			c.DeletedSrc[a.Node] = true
		case Update:
			c.UpdatedSrc[a.Node] = true
			if mappings != nil {
				if d := mappings.Dst(a.Node); d != nil {
					c.UpdatedDst[d] = true
				}
			}
		case Move, Permute:
			c.MovedSrc[a.Node] = true
			if mappings != nil {
				if d := mappings.Dst(a.Node); d != nil {
					c.MovedDst[d] = true
				}
			}
		}
	}

	for _, a := range script.Actions {
		switch a.Kind {
		case Insert:
			if p := a.Node.Parent(); p == nil || !c.InsertedDst[p] {
				c.InsertedRoots = append(c.InsertedRoots, a.Node)
			}
		case Delete:
			if p := a.Node.Parent(); p == nil || !c.DeletedSrc[p] {
				c.DeletedRoots = append(c.DeletedRoots, a.Node)
			}
		}
	}
	return c
}
