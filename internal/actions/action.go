// Package actions turns a node mapping between two trees into an ordered
// edit script and replays such scripts.
package actions

import (
	"fmt"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Kind identifies an edit operation.
type Kind int

const (
	// Insert adds a node carrying the shape of a destination node
	Insert Kind = iota
	// Delete removes a leaf of the working copy
	Delete
	// Update relabels a node
	Update
	// Move relocates a subtree under another parent
	Move
	// Permute reorders a subtree within its current parent
	Permute
)

var kindNames = [...]string{"insert", "delete", "update", "move", "permute"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind { return []Kind{Insert, Delete, Update, Move, Permute} }

// Action is one step of an edit script.
//
// Node is a source node, except for Insert where it is the destination node
// whose shape is inserted. Parent is the target parent for Insert, Move and
// Permute and the former parent for Delete. It is a source node, or the
// destination node of an earlier Insert, or nil for the virtual root above
// the source root. Position is the child index in Parent at the time the
// action is applied.
type Action struct {
	Kind     Kind
	Node     *tree.Node
	Parent   *tree.Node
	Position int
	OldLabel string
	NewLabel string
}

func (a Action) String() string {
	switch a.Kind {
	case Update:
		return fmt.Sprintf("%s %s %q -> %q", a.Kind, a.Node, a.OldLabel, a.NewLabel)
	case Delete:
		return fmt.Sprintf("%s %s", a.Kind, a.Node)
	default:
		return fmt.Sprintf("%s %s into %s at %d", a.Kind, a.Node, a.Parent, a.Position)
	}
}

// EditScript is an ordered, replayable list of actions.
type EditScript struct {
	Actions []Action
}

// Len returns the number of actions.
func (s *EditScript) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Actions)
}

// Count returns the number of actions of the given kind.
func (s *EditScript) Count(kind Kind) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// OfKind returns the actions of the given kind in script order.
func (s *EditScript) OfKind(kind Kind) []Action {
	if s == nil {
		return nil
	}
	var out []Action
	for _, a := range s.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func (s *EditScript) add(a Action) {
	s.Actions = append(s.Actions, a)
}
