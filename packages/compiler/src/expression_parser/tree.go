package expression_parser

import (
	"fmt"
	"strconv"
)

// Span is a half-open byte range [Start, End) of the parsed text.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Node is a CST node. Nodes are immutable once the Builder returns them;
// accessors hand out copies.
type Node struct {
	kind     NodeKind
	span     Span
	children []*Node
	token    *Token
	data     NodeData
}

func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Span() Span     { return n.span }

// Token returns the wrapped token of a NodeToken leaf and nil otherwise.
func (n *Node) Token() *Token { return n.token }

// Data returns the payload attached when the node was finished, or nil.
func (n *Node) Data() NodeData { return n.data }

// Children returns all children, leaves included.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildNodes returns the children that are not token leaves.
func (n *Node) ChildNodes() []*Node {
	var nodes []*Node
	for _, c := range n.children {
		if c.kind != NodeToken {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

// FirstChildOfKind returns the first direct child of the given kind.
func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// Text returns the slice of source covered by the node.
func (n *Node) Text(source string) string {
	return source[n.span.Start:n.span.End]
}

// Tokens returns the token leaves under n in source order.
func (n *Node) Tokens() []*Token {
	var tokens []*Token
	n.Walk(func(c *Node) bool {
		if c.token != nil {
			tokens = append(tokens, c.token)
		}
		return true
	})
	return tokens
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns every node of the given kind under n, n included.
func (n *Node) Find(kind NodeKind) []*Node {
	var found []*Node
	n.Walk(func(c *Node) bool {
		if c.kind == kind {
			found = append(found, c)
		}
		return true
	})
	return found
}

// NodeData is the typed payload of a node.
type NodeData interface {
	nodeData()
	String() string
}

// NameData names references, pipes, properties and binding keys.
type NameData struct{ Name string }

// OperatorData is attached to Binary and Prefix nodes.
type OperatorData struct{ Operator string }

// MemberData is attached to Member nodes; Safe marks `?.`.
type MemberData struct {
	Name string
	Safe bool
}

// AccessData is attached to Index and Call nodes; Safe marks `?.[` and `?.(`.
type AccessData struct{ Safe bool }

type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBoolean
	LiteralNull
	LiteralUndefined
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralUndefined:
		return "undefined"
	}
	return "number"
}

// LiteralData holds the decoded value: float64, string, bool or nil.
type LiteralData struct {
	Kind  LiteralKind
	Value any
}

// QuoteData is the `prefix: payload` shorthand; the payload is not parsed.
type QuoteData struct {
	Prefix  string
	Payload string
}

type KeyKind int

const (
	KeyKindBinding KeyKind = iota
	KeyKindLet
	KeyKindAs
)

func (k KeyKind) String() string {
	switch k {
	case KeyKindLet:
		return "let"
	case KeyKindAs:
		return "as"
	}
	return "binding"
}

// TemplateBindingData describes one binding of a structural directive.
// For variables (Let, As) Key is the local name and Name the value it
// aliases; for KeyKindBinding, Key is the directive input and Name is empty.
type TemplateBindingData struct {
	Key     string
	KeyKind KeyKind
	Name    string
}

type TemplateBindingsData struct{ TemplateKey string }

type BlockParameterData struct {
	BlockName string
	Block     BlockKind
	Index     int
}

// DeferredTimeData is the value of `500ms`/`1.5s`. Valid is false when the
// magnitude or unit could not be understood; Unit defaults to "ms".
type DeferredTimeData struct {
	Magnitude float64
	Unit      string
	Valid     bool
}

// Milliseconds returns the duration in milliseconds.
func (d *DeferredTimeData) Milliseconds() float64 {
	if d.Unit == "s" {
		return d.Magnitude * 1000
	}
	return d.Magnitude
}

type TriggerData struct{ Name string }

func (*NameData) nodeData()             {}
func (*OperatorData) nodeData()         {}
func (*MemberData) nodeData()           {}
func (*AccessData) nodeData()           {}
func (*LiteralData) nodeData()          {}
func (*QuoteData) nodeData()            {}
func (*TemplateBindingData) nodeData()  {}
func (*TemplateBindingsData) nodeData() {}
func (*BlockParameterData) nodeData()   {}
func (*DeferredTimeData) nodeData()     {}
func (*TriggerData) nodeData()          {}

func (d *NameData) String() string     { return d.Name }
func (d *OperatorData) String() string { return d.Operator }

func (d *MemberData) String() string {
	if d.Safe {
		return "?." + d.Name
	}
	return d.Name
}

func (d *AccessData) String() string {
	if d.Safe {
		return "?."
	}
	return ""
}

func (d *LiteralData) String() string {
	switch v := d.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		if d.Kind == LiteralUndefined {
			return "undefined"
		}
		return "null"
	}
	return fmt.Sprint(d.Value)
}

func (d *QuoteData) String() string {
	return d.Prefix + ":" + d.Payload
}

func (d *TemplateBindingData) String() string {
	switch d.KeyKind {
	case KeyKindLet, KeyKindAs:
		return fmt.Sprintf("%s %s=%s", d.KeyKind, d.Key, d.Name)
	}
	return d.Key
}

func (d *TemplateBindingsData) String() string { return d.TemplateKey }

func (d *BlockParameterData) String() string {
	return fmt.Sprintf("%s#%d", d.BlockName, d.Index)
}

func (d *DeferredTimeData) String() string {
	if !d.Valid {
		return "invalid"
	}
	return strconv.FormatFloat(d.Magnitude, 'g', -1, 64) + d.Unit
}

func (d *TriggerData) String() string { return d.Name }
