package tree

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parse reads the compact form produced by Format, e.g.
//
//	module(func="f"(block(return)),func="g")
//
// Type names are registered in reg. Node spans refer to offsets in s.
func Parse(s string, reg *TypeRegistry) (*Node, error) {
	p := &sexprParser{src: s, reg: reg}
	p.skipSpace()
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q after tree", p.src[p.pos])
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(s string, reg *TypeRegistry) *Node {
	n, err := Parse(s, reg)
	if err != nil {
		panic(err)
	}
	return n
}

type sexprParser struct {
	src string
	pos int
	reg *TypeRegistry
}

func (p *sexprParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("parse tree at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || b == '-' || b == ':' || b == '#' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *sexprParser) node() (*Node, error) {
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		if p.pos >= len(p.src) {
			return nil, p.errorf("unexpected end of input")
		}
		return nil, p.errorf("expected type name, got %q", p.src[p.pos])
	}
	n := New(p.reg.Register(p.src[start:p.pos]), "")

	p.skipSpace()
	if p.peek('=') {
		p.pos++
		p.skipSpace()
		label, err := p.quoted()
		if err != nil {
			return nil, err
		}
		n.label = label
		p.skipSpace()
	}

	if p.peek('(') {
		p.pos++
		for {
			p.skipSpace()
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
			p.skipSpace()
			if p.peek(',') {
				p.pos++
				continue
			}
			if p.peek(')') {
				p.pos++
				break
			}
			return nil, p.errorf("expected ',' or ')'")
		}
	}
	n.SetPos(start, p.pos-start)
	return n, nil
}

func (p *sexprParser) peek(b byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == b
}

func (p *sexprParser) quoted() (string, error) {
	if !p.peek('"') {
		return "", p.errorf("expected quoted label")
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			label, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", p.errorf("bad label: %v", err)
			}
			return label, nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated label")
}
