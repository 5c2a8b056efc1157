package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTree is returned when a nil root is given where a tree is required.
	ErrEmptyTree = errors.New("tree is empty")
	// ErrNotRoot is returned when the given root has a parent.
	ErrNotRoot = errors.New("node is not a root")
	// ErrCycle is returned when a node is reachable twice from the root.
	ErrCycle = errors.New("tree contains a cycle or shared node")
	// ErrParentMismatch is returned when a child's parent link is inconsistent.
	ErrParentMismatch = errors.New("child parent link is inconsistent")
	// ErrUnknownType is returned when a type code is missing from the registry.
	ErrUnknownType = errors.New("type code not in registry")
)

// ValidationError describes the first contract violation found in a tree.
type ValidationError struct {
	Node *Node
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Node == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v at %s", e.Err, e.Node)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks that root is a well-formed tree: it is a root, every node is
// reachable once, parent links match the child lists, and, when reg is not nil,
// every type code was issued by reg.
func Validate(root *Node, reg *TypeRegistry) error {
	if root == nil {
		return &ValidationError{Err: ErrEmptyTree}
	}
	if root.parent != nil {
		return &ValidationError{Node: root, Err: ErrNotRoot}
	}

	visited := make(map[*Node]bool)
	stack := []*Node{root}
	visited[root] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if reg != nil && !reg.Known(n.typ) {
			return &ValidationError{Node: n, Err: ErrUnknownType}
		}
		for _, c := range n.children {
			if c == nil {
				return &ValidationError{Node: n, Err: ErrParentMismatch}
			}
			if visited[c] {
				return &ValidationError{Node: c, Err: ErrCycle}
			}
			if c.parent != n {
				return &ValidationError{Node: c, Err: ErrParentMismatch}
			}
			visited[c] = true
			stack = append(stack, c)
		}
	}
	return nil
}
