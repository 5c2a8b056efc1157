package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// JSON node types
const (
	jsonObject = "json_object"
	jsonMember = "json_member"
	jsonArray  = "json_array"
	jsonString = "json_string"
	jsonNumber = "json_number"
	jsonBool   = "json_bool"
	jsonNull   = "json_null"
)

// JSONGenerator builds trees from a single JSON value. Object members are
// labelled with their key.
type JSONGenerator struct {
	types *tree.TypeRegistry
}

// NewJSONGenerator creates a JSON generator.
func NewJSONGenerator(types *tree.TypeRegistry) *JSONGenerator {
	return &JSONGenerator{types: types}
}

func (g *JSONGenerator) Name() string       { return "json" }
func (g *JSONGenerator) Patterns() []string { return []string{"*.json"} }

// Generate parses src, which must hold exactly one JSON value.
func (g *JSONGenerator) Generate(ctx context.Context, src []byte) (*tree.Node, error) {
	p := &jsonParser{ctx: ctx, src: src, dec: json.NewDecoder(bytes.NewReader(src)), types: g.types}
	p.dec.UseNumber()

	root, err := p.value()
	if err != nil {
		return nil, err
	}
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrSyntax)
	}
	return root, nil
}

type jsonParser struct {
	ctx   context.Context
	src   []byte
	dec   *json.Decoder
	types *tree.TypeRegistry
}

// next reads a token and returns it with its start offset.
func (p *jsonParser) next() (json.Token, int, error) {
	start := p.skipSeparators(int(p.dec.InputOffset()))
	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("%w: unexpected end of JSON input", ErrSyntax)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tok, start, nil
}

func (p *jsonParser) skipSeparators(i int) int {
	for i < len(p.src) {
		switch p.src[i] {
		case ' ', '\t', '\r', '\n', ',', ':':
			i++
		default:
			return i
		}
	}
	return i
}

func (p *jsonParser) end() int { return int(p.dec.InputOffset()) }

func (p *jsonParser) value() (*tree.Node, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	tok, start, err := p.next()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return p.object(start)
		case '[':
			return p.array(start)
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, v, start)
		}
	case string:
		return p.leaf(jsonString, v, start), nil
	case json.Number:
		return p.leaf(jsonNumber, v.String(), start), nil
	case bool:
		return p.leaf(jsonBool, fmt.Sprint(v), start), nil
	case nil:
		return p.leaf(jsonNull, "", start), nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
	}
}

func (p *jsonParser) leaf(typ, label string, start int) *tree.Node {
	return tree.NewWithPos(p.types.Register(typ), label, start, p.end()-start)
}

func (p *jsonParser) object(start int) (*tree.Node, error) {
	out := tree.NewWithPos(p.types.Register(jsonObject), "", start, 0)
	for p.dec.More() {
		tok, kstart, err := p.next()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key expected at offset %d", ErrSyntax, kstart)
		}
		member := tree.NewWithPos(p.types.Register(jsonMember), key, kstart, 0)
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		member.AddChild(val)
		member.SetPos(kstart, val.EndPos()-kstart)
		out.AddChild(member)
	}
	if _, _, err := p.next(); err != nil {
		return nil, err
	}
	out.SetPos(start, p.end()-start)
	return out, nil
}

func (p *jsonParser) array(start int) (*tree.Node, error) {
	out := tree.NewWithPos(p.types.Register(jsonArray), "", start, 0)
	for p.dec.More() {
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out.AddChild(val)
	}
	if _, _, err := p.next(); err != nil {
		return nil, err
	}
	out.SetPos(start, p.end()-start)
	return out, nil
}
