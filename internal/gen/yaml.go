package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// YAML node types
const (
	yamlStream   = "yaml_stream"
	yamlDocument = "yaml_document"
	yamlMapping  = "yaml_mapping"
	yamlPair     = "yaml_pair"
	yamlSequence = "yaml_sequence"
	yamlScalar   = "yaml_scalar"
	yamlAlias    = "yaml_alias"
)

// YAMLGenerator builds trees from YAML streams. Mapping entries become
// pair nodes labelled with their key, so renaming a key is an update.
type YAMLGenerator struct {
	types *tree.TypeRegistry
}

// NewYAMLGenerator creates a YAML generator.
func NewYAMLGenerator(types *tree.TypeRegistry) *YAMLGenerator {
	return &YAMLGenerator{types: types}
}

func (g *YAMLGenerator) Name() string       { return "yaml" }
func (g *YAMLGenerator) Patterns() []string { return []string{"*.yaml", "*.yml"} }

// Generate parses every document of the stream under one root.
func (g *YAMLGenerator) Generate(ctx context.Context, src []byte) (*tree.Node, error) {
	lines := newLineIndex(src)
	root := tree.NewWithPos(g.types.Register(yamlStream), "", 0, len(src))

	dec := yaml.NewDecoder(bytes.NewReader(src))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		root.AddChild(g.convert(&doc, lines))
	}
	return root, nil
}

func (g *YAMLGenerator) convert(n *yaml.Node, lines *lineIndex) *tree.Node {
	pos := lines.offset(n.Line, n.Column)
	switch n.Kind {
	case yaml.DocumentNode:
		out := tree.NewWithPos(g.types.Register(yamlDocument), "", pos, 0)
		for _, c := range n.Content {
			out.AddChild(g.convert(c, lines))
		}
		return spanChildren(out)

	case yaml.MappingNode:
		out := tree.NewWithPos(g.types.Register(yamlMapping), "", pos, 0)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			kpos := lines.offset(key.Line, key.Column)
			pair := tree.NewWithPos(g.types.Register(yamlPair), key.Value, kpos, len(key.Value))
			pair.AddChild(g.convert(value, lines))
			out.AddChild(spanChildren(pair))
		}
		return spanChildren(out)

	case yaml.SequenceNode:
		out := tree.NewWithPos(g.types.Register(yamlSequence), "", pos, 0)
		for _, c := range n.Content {
			out.AddChild(g.convert(c, lines))
		}
		return spanChildren(out)

	case yaml.AliasNode:
		return tree.NewWithPos(g.types.Register(yamlAlias), n.Value, pos, len(n.Value)+1)

	default:
		return tree.NewWithPos(g.types.Register(yamlScalar), n.Value, pos, len(n.Value))
	}
}

// spanChildren stretches n so that it ends where its last child ends.
func spanChildren(n *tree.Node) *tree.Node {
	end := n.EndPos()
	for _, c := range n.Children() {
		if c.EndPos() > end {
			end = c.EndPos()
		}
	}
	n.SetPos(n.Pos(), end-n.Pos())
	return n
}

// lineIndex converts 1-based line and column pairs into byte offsets.
type lineIndex struct {
	starts []int
	size   int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts, size: len(src)}
}

func (l *lineIndex) offset(line, column int) int {
	if line < 1 || line > len(l.starts) {
		return 0
	}
	off := l.starts[line-1] + column - 1
	if off < 0 {
		return 0
	}
	if off > l.size {
		return l.size
	}
	return off
}
