// Package vmf reads Valve Map Format (.vmf) text into a plain tree of named
// blocks with ordered key/value properties.
package vmf

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// VMF format errors.
var (
	ErrUnexpectedEOF = errors.New("vmf: unexpected end of input")
)

// SyntaxError reports malformed input at a line (1-based).
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("vmf: line %d: %s", e.Line, e.Msg)
}

// Property is a single "key" "value" pair.
type Property struct {
	Key   string
	Value string
	Line  int
}

// Node is a named block. The root node returned by Parse has an empty name.
type Node struct {
	Name     string
	Line     int
	Props    []Property
	Children []*Node
}

// Get returns the first value stored under key.
func (n *Node) Get(key string) (string, bool) {
	for _, p := range n.Props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Value returns the first value stored under key, or "".
func (n *Node) Value(key string) string {
	v, _ := n.Get(key)
	return v
}

// Child returns the first child block with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child block with the given name, in file order.
func (n *Node) All(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Solids returns every "solid" block under world and entity blocks, world
// first. Solids nested in hidden groups are included.
func (n *Node) Solids() []*Node {
	var out []*Node
	collect := func(root *Node) {
		root.Walk(func(c *Node) bool {
			if c.Name == "solid" {
				out = append(out, c)
				return false
			}
			return true
		})
	}
	for _, w := range n.All("world") {
		collect(w)
	}
	for _, e := range n.All("entity") {
		collect(e)
	}
	return out
}

// Parse reads a whole .vmf document.
func Parse(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vmf: read: %w", err)
	}
	return ParseBytes(data)
}

// ParseFile reads and parses the .vmf file at path.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory .vmf document.
func ParseBytes(data []byte) (*Node, error) {
	lx := &lexer{src: data, line: 1}
	root := &Node{Line: 1}
	if err := parseBlock(lx, root, true); err != nil {
		return nil, err
	}
	return root, nil
}

func parseBlock(lx *lexer, n *Node, top bool) error {
	for {
		tok, err := lx.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokEOF:
			if top {
				return nil
			}
			return fmt.Errorf("block %q opened on line %d: %w", n.Name, n.Line, ErrUnexpectedEOF)
		case tokClose:
			if top {
				return &SyntaxError{Line: tok.line, Msg: "unexpected '}'"}
			}
			return nil
		case tokOpen:
			return &SyntaxError{Line: tok.line, Msg: "block without a name"}
		}

		// tok is a string: either a key or a block name
		after, err := lx.next()
		if err != nil {
			return err
		}
		switch after.kind {
		case tokString:
			n.Props = append(n.Props, Property{Key: tok.text, Value: after.text, Line: tok.line})
		case tokOpen:
			child := &Node{Name: tok.text, Line: tok.line}
			if err := parseBlock(lx, child, false); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case tokEOF:
			return fmt.Errorf("key %q on line %d: %w", tok.text, tok.line, ErrUnexpectedEOF)
		default:
			return &SyntaxError{Line: after.line, Msg: fmt.Sprintf("key %q has no value", tok.text)}
		}
	}
}
