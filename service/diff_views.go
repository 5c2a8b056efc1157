package service

import (
	"fmt"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/actions"
	"github.com/ludo-technologies/astdiff/internal/matcher"
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// viewBuilder turns engine results into serializable views
type viewBuilder struct {
	types *tree.TypeRegistry
}

func newViewBuilder(types *tree.TypeRegistry) *viewBuilder {
	return &viewBuilder{types: types}
}

func (b *viewBuilder) ref(n *tree.Node) domain.NodeRef {
	return domain.NodeRef{
		Type:  b.types.Name(n.Type()),
		Label: n.Label(),
		Pos:   n.Pos(),
		End:   n.EndPos(),
	}
}

// describe renders n as `type: label [pos,end]`, or `type [pos,end]` for
// unlabelled nodes
func (b *viewBuilder) describe(n *tree.Node) string {
	if n == nil {
		return ""
	}
	name := b.types.Name(n.Type())
	if n.Label() == "" {
		return fmt.Sprintf("%s [%d,%d]", name, n.Pos(), n.EndPos())
	}
	return fmt.Sprintf("%s: %s [%d,%d]", name, n.Label(), n.Pos(), n.EndPos())
}

func (b *viewBuilder) actions(script *actions.EditScript) []domain.ActionView {
	views := make([]domain.ActionView, 0, script.Len())
	if script == nil {
		return views
	}
	for _, a := range script.Actions {
		view := domain.ActionView{
			Action: a.Kind.String(),
			Tree:   b.describe(a.Node),
			Node:   b.ref(a.Node),
		}
		switch a.Kind {
		case actions.Update:
			view.Label = a.NewLabel
			view.OldLabel = a.OldLabel
		case actions.Delete:
		default:
			at := a.Position
			view.At = &at
			if a.Parent != nil {
				view.Parent = b.describe(a.Parent)
				parent := b.ref(a.Parent)
				view.Target = &parent
			}
		}
		views = append(views, view)
	}
	return views
}

func (b *viewBuilder) mappings(store *matcher.MappingStore) []domain.MappingView {
	all := store.Mappings()
	views := make([]domain.MappingView, len(all))
	for i, m := range all {
		views[i] = domain.MappingView{Src: b.describe(m.Src), Dst: b.describe(m.Dst)}
	}
	return views
}

// classification lists nodes in script order so output is stable
func (b *viewBuilder) classification(script *actions.EditScript, c *actions.Classification) *domain.ClassificationView {
	view := &domain.ClassificationView{
		Deleted:  make([]string, 0, len(c.DeletedRoots)),
		Inserted: make([]string, 0, len(c.InsertedRoots)),
		Updated:  []string{},
		Moved:    []string{},
	}
	for _, n := range c.DeletedRoots {
		view.Deleted = append(view.Deleted, b.describe(n))
	}
	for _, n := range c.InsertedRoots {
		view.Inserted = append(view.Inserted, b.describe(n))
	}
	for _, a := range script.Actions {
		switch {
		case a.Kind == actions.Update && c.UpdatedSrc[a.Node]:
			view.Updated = append(view.Updated, b.describe(a.Node))
		case (a.Kind == actions.Move || a.Kind == actions.Permute) && c.MovedSrc[a.Node]:
			view.Moved = append(view.Moved, b.describe(a.Node))
		}
	}
	return view
}
