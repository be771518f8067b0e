package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
	NodeMap
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	case NodeMap:
		return "map"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Node is one datum: an atom, a list (optionally carrying ^{...} metadata)
// or a map.
type Node struct {
	Type NodeType

	Text string // NodeSymbol, NodeString, NodeInteger

	Items []*Node  // NodeList, NodeMap (values)
	Keys  []string // NodeMap, parallel to Items

	// NodeList metadata, parallel slices like a map
	MetaKeys  []string
	MetaItems []*Node
}

func NewSymbol(name string) *Node { return &Node{Type: NodeSymbol, Text: name} }
func NewString(value string) *Node { return &Node{Type: NodeString, Text: value} }
func NewInteger(text string) *Node { return &Node{Type: NodeInteger, Text: text} }
func NewEllipsis() *Node { return &Node{Type: NodeEllipsis} }
func NewList(items ...*Node) *Node { return &Node{Type: NodeList, Items: items} }
func NewMap(keys []string, items []*Node) *Node {
	return &Node{Type: NodeMap, Keys: keys, Items: items}
}

// Meta returns the metadata value stored under key, or nil.
func (n *Node) Meta(key string) *Node {
	for i, k := range n.MetaKeys {
		if k == key {
			return n.MetaItems[i]
		}
	}
	return nil
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		sb.WriteString(n.Text)
	case NodeString:
		sb.WriteString(quote(n.Text))
	case NodeEllipsis:
		sb.WriteString("...")
	case NodeList:
		sb.WriteString("(")
		sep := ""
		if len(n.MetaKeys) > 0 {
			writePairs(sb, "^{", n.MetaKeys, n.MetaItems)
			sep = " "
		}
		for _, item := range n.Items {
			sb.WriteString(sep)
			item.write(sb)
			sep = " "
		}
		sb.WriteString(")")
	case NodeMap:
		writePairs(sb, "{", n.Keys, n.Items)
	default:
		panic(fmt.Sprintf("sexy: write of %v", n.Type))
	}
}

func writePairs(sb *strings.Builder, open string, keys []string, items []*Node) {
	sb.WriteString(open)
	for i, key := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(key + ": ")
		items[i].write(sb)
	}
	sb.WriteString("}")
}

// Parse parses input, which must hold exactly one datum. Comments run from
// ';' to the end of the line.
func Parse(input string) (*Node, error) {
	p := &parser{input: input}
	node, err := p.datum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("expected end of input but got %q", p.input[p.pos])
	}
	return node, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == ';':
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		case unicode.IsSpace(rune(c)):
			p.pos++
		default:
			return
		}
	}
}

// expect consumes c after optional whitespace.
func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) datum() (*Node, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '(':
		return p.list()
	case c == '{':
		p.pos++
		keys, items, err := p.pairs()
		if err != nil {
			return nil, err
		}
		return NewMap(keys, items), nil
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case strings.HasPrefix(p.input[p.pos:], "..."):
		p.pos += 3
		return NewEllipsis(), nil
	case isDigit(c) || ((c == '-' || c == '+') && isDigit(p.at(1))):
		start := p.pos
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
		}
		return NewInteger(p.input[start:p.pos]), nil
	case isSymbolChar(c):
		start := p.pos
		for isSymbolChar(p.peek()) {
			p.pos++
		}
		return NewSymbol(p.input[start:p.pos]), nil
	}
	return nil, p.errorf("unexpected character %q", c)
}

func (p *parser) at(offset int) byte {
	if p.pos+offset >= len(p.input) {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *parser) list() (*Node, error) {
	p.pos++ // '('
	list := NewList()
	for {
		p.skipSpace()
		switch p.peek() {
		case 0:
			return nil, p.errorf("unterminated list")
		case ')':
			p.pos++
			return list, nil
		case '^':
			p.pos++
			if err := p.expect('{'); err != nil {
				return nil, err
			}
			keys, items, err := p.pairs()
			if err != nil {
				return nil, err
			}
			for i, key := range keys {
				list.setMeta(key, items[i])
			}
		default:
			item, err := p.datum()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
		}
	}
}

// setMeta stores a metadata entry. A repeated key keeps the later value.
func (n *Node) setMeta(key string, value *Node) {
	for i, k := range n.MetaKeys {
		if k == key {
			n.MetaItems[i] = value
			return
		}
	}
	n.MetaKeys = append(n.MetaKeys, key)
	n.MetaItems = append(n.MetaItems, value)
}

// pairs parses "key: value, ..." up to and including the closing brace.
func (p *parser) pairs() ([]string, []*Node, error) {
	var keys []string
	var items []*Node
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return keys, items, nil
		}
		start := p.pos
		for isSymbolChar(p.peek()) {
			p.pos++
		}
		if start == p.pos {
			return nil, nil, p.errorf("expected symbol for map key")
		}
		key := p.input[start:p.pos]
		if err := p.expect(':'); err != nil {
			return nil, nil, err
		}
		value, err := p.datum()
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		items = append(items, value)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, nil, p.errorf("expected ',' or '}' in map")
		}
	}
}

func (p *parser) str() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		c := p.peek()
		switch c {
		case 0:
			return "", p.errorf("unterminated string")
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			next := p.at(1)
			if next != '"' && next != '\\' {
				return "", p.errorf("invalid escape sequence \\%c", next)
			}
			sb.WriteByte(next)
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || isDigit(c) || c == '-' || c == '_'
}
