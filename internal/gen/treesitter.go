package gen

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// operatorType names the node type of anonymous operator tokens, which carry
// the operator text as label.
const operatorType = "operator"

// TreeSitterGenerator converts a tree-sitter concrete syntax tree into a
// diff tree. Named nodes keep their grammar type; named leaves are labelled
// with their source text. Anonymous tokens are dropped except operators.
type TreeSitterGenerator struct {
	name     string
	patterns []string
	language *sitter.Language
	types    *tree.TypeRegistry
}

// NewTreeSitterGenerator creates a generator for any tree-sitter grammar.
func NewTreeSitterGenerator(name string, patterns []string, language *sitter.Language, types *tree.TypeRegistry) *TreeSitterGenerator {
	return &TreeSitterGenerator{name: name, patterns: patterns, language: language, types: types}
}

// NewPythonGenerator handles Python sources
func NewPythonGenerator(types *tree.TypeRegistry) *TreeSitterGenerator {
	return NewTreeSitterGenerator("python", []string{"*.py", "*.pyi"}, python.GetLanguage(), types)
}

// NewJavaScriptGenerator handles JavaScript sources
func NewJavaScriptGenerator(types *tree.TypeRegistry) *TreeSitterGenerator {
	return NewTreeSitterGenerator("javascript", []string{"*.js", "*.mjs", "*.cjs", "*.jsx"}, javascript.GetLanguage(), types)
}

// NewGoGenerator handles Go sources
func NewGoGenerator(types *tree.TypeRegistry) *TreeSitterGenerator {
	return NewTreeSitterGenerator("go", []string{"*.go"}, golang.GetLanguage(), types)
}

func (g *TreeSitterGenerator) Name() string       { return g.name }
func (g *TreeSitterGenerator) Patterns() []string { return g.patterns }

// Generate parses src. Sources with syntax errors are rejected.
func (g *TreeSitterGenerator) Generate(ctx context.Context, src []byte) (*tree.Node, error) {
	// sitter.Parser is not safe for concurrent use, so each call gets its own
	parser := sitter.NewParser()
	parser.SetLanguage(g.language)

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	root := st.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s source contains errors", ErrSyntax, g.name)
	}
	return g.convert(root, src), nil
}

func (g *TreeSitterGenerator) convert(n *sitter.Node, src []byte) *tree.Node {
	start, end := int(n.StartByte()), int(n.EndByte())
	label := ""
	if n.NamedChildCount() == 0 {
		label = n.Content(src)
	}
	out := tree.NewWithPos(g.types.Register(n.Type()), label, start, end-start)

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		switch {
		case c.IsNamed():
			out.AddChild(g.convert(c, src))
		case isOperator(c.Type()):
			cs, ce := int(c.StartByte()), int(c.EndByte())
			out.AddChild(tree.NewWithPos(g.types.Register(operatorType), c.Type(), cs, ce-cs))
		}
	}
	return out
}

// isOperator reports whether an anonymous token is worth keeping. Keywords
// are implied by the parent's type and punctuation carries no meaning.
func isOperator(tok string) bool {
	if tok == "" {
		return false
	}
	if len(tok) == 1 && strings.ContainsAny(tok, "()[]{},;.:\"'`") {
		return false
	}
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
