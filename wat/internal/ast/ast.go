// Package ast groups a token.Token stream into the S-expression tree WAT
// source actually is. It stays generic — no knowledge of which heads
// ("func", "i32.const", ...) are legal — so encoder owns every semantic
// rule about what a node means.
package ast

import (
	"fmt"

	"github.com/outlandhq/wasmfn/wat/internal/token"
)

// Item is one element inside a Node's parens: either a bare atom/string or
// a nested Node. WAT mixes the two freely and in either order (e.g.
// `(memory (export "m") 4)` has a child before a trailing atom), so a node
// keeps them in one ordered slice rather than splitting atoms from
// children up front.
type Item struct {
	Atom string
	Node *Node
}

// Node is one parenthesized form: (Head Items...).
type Node struct {
	Head  string
	Items []Item
}

// Atoms returns this node's direct atom items, in order, skipping nested
// nodes.
func (n *Node) Atoms() []string {
	var out []string
	for _, it := range n.Items {
		if it.Node == nil {
			out = append(out, it.Atom)
		}
	}
	return out
}

// Children returns this node's direct child nodes, in order, skipping
// atoms.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, it := range n.Items {
		if it.Node != nil {
			out = append(out, it.Node)
		}
	}
	return out
}

// Find returns the first direct child whose Head equals name, or nil.
func (n *Node) Find(name string) *Node {
	for _, it := range n.Items {
		if it.Node != nil && it.Node.Head == name {
			return it.Node
		}
	}
	return nil
}

// Parse reads exactly one top-level form from toks.
func Parse(toks []token.Token) (*Node, error) {
	p := &parser{toks: toks}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != token.EOF {
		return nil, fmt.Errorf("wat: unexpected trailing input after top-level form")
	}
	return n, nil
}

type parser struct {
	toks []token.Token
	pos  int
}

func (p *parser) cur() token.Token { return p.toks[p.pos] }

func (p *parser) node() (*Node, error) {
	if p.cur().Kind != token.LParen {
		return nil, fmt.Errorf("wat: expected '(', got %s", describe(p.cur()))
	}
	p.pos++
	if p.cur().Kind != token.Atom {
		return nil, fmt.Errorf("wat: expected a head keyword, got %s", describe(p.cur()))
	}
	n := &Node{Head: p.cur().Text}
	p.pos++
	for {
		switch p.cur().Kind {
		case token.RParen:
			p.pos++
			return n, nil
		case token.LParen:
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, Item{Node: child})
		case token.Atom, token.String:
			n.Items = append(n.Items, Item{Atom: p.cur().Text})
			p.pos++
		case token.EOF:
			return nil, fmt.Errorf("wat: unexpected end of input inside (%s ...)", n.Head)
		}
	}
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.RParen:
		return "')'"
	case token.EOF:
		return "end of input"
	case token.String:
		return fmt.Sprintf("string %q", t.Text)
	default:
		return fmt.Sprintf("%q", t.Text)
	}
}
