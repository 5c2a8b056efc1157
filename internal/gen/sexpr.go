package gen

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// SexprGenerator reads the compact form printed by tree.Format, e.g.
// `module(func="f"(block(return)))`. It is handy for fixtures and for
// trees exported by other tools.
type SexprGenerator struct {
	types *tree.TypeRegistry
}

// NewSexprGenerator creates an s-expression generator.
func NewSexprGenerator(types *tree.TypeRegistry) *SexprGenerator {
	return &SexprGenerator{types: types}
}

func (g *SexprGenerator) Name() string       { return "sexpr" }
func (g *SexprGenerator) Patterns() []string { return []string{"*.sexpr", "*.tree"} }

func (g *SexprGenerator) Generate(ctx context.Context, src []byte) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := tree.Parse(string(src), g.types)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return root, nil
}
