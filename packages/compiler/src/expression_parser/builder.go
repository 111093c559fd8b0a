package expression_parser

import "fmt"

// Checkpoint marks a position in the builder's child list. A node started
// at a checkpoint adopts every child produced after it.
type Checkpoint int

type openNode struct {
	kind  NodeKind
	first int
}

// Builder assembles a Node tree from parse events. Children of open nodes
// live in one flat list, so a node can be started "in the past" at a
// checkpoint to re-parent what was already built (left-associative pipes
// and binary operators). A Builder is single use.
//
// Trivia is held back until the next significant token and then attached
// outside of any node that token opens, so node spans never start or end
// with whitespace or comments. Trivia left at the end goes to the root.
type Builder struct {
	children []*Node
	open     []openNode
	// trivia waiting for the next significant token
	pending     []*Node
	offset      int
	diagnostics []Diagnostic
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Checkpoint() Checkpoint {
	return Checkpoint(len(b.children))
}

// StartNode opens a node that will receive the next children.
func (b *Builder) StartNode(kind NodeKind) {
	b.open = append(b.open, openNode{kind: kind, first: len(b.children)})
}

// StartNodeAt opens a node that adopts the children built since cp.
func (b *Builder) StartNodeAt(cp Checkpoint, kind NodeKind) {
	first := int(cp)
	if first > len(b.children) {
		panic(fmt.Sprintf("checkpoint %d is past the last child %d", first, len(b.children)))
	}
	if n := len(b.open); n > 0 && first < b.open[n-1].first {
		panic(fmt.Sprintf("checkpoint %d precedes the open %s node", first, b.open[n-1].kind))
	}
	for first < len(b.children) && b.children[first].isTrivia() {
		first++
	}
	b.open = append(b.open, openNode{kind: kind, first: first})
}

// FinishNode closes the innermost open node.
func (b *Builder) FinishNode(data NodeData) *Node {
	if len(b.open) == 0 {
		panic("FinishNode without an open node")
	}
	if len(b.open) == 1 {
		b.children = append(b.children, b.pending...)
		b.pending = nil
	}
	top := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]

	children := append([]*Node(nil), b.children[top.first:]...)
	node := &Node{kind: top.kind, children: children, data: data}
	if len(children) == 0 {
		node.span = Span{Start: b.offset, End: b.offset}
	} else {
		node.span = Span{Start: children[0].span.Start, End: children[len(children)-1].span.End}
	}
	b.children = append(b.children[:top.first], node)
	return node
}

// Wrap closes a node of the given kind around the children built since cp.
func (b *Builder) Wrap(cp Checkpoint, kind NodeKind, data NodeData) *Node {
	b.StartNodeAt(cp, kind)
	return b.FinishNode(data)
}

// Token attaches tok as a leaf of the innermost open node. Trivia is
// deferred until the next significant token.
func (b *Builder) Token(tok *Token) {
	leaf := &Node{kind: NodeToken, span: tok.Span(), token: tok}
	if tok.IsTrivia() {
		b.pending = append(b.pending, leaf)
		return
	}
	if len(b.pending) > 0 {
		// nodes still waiting for their first token start after the trivia
		for i := len(b.open) - 1; i > 0 && b.open[i].first == len(b.children); i-- {
			b.open[i].first += len(b.pending)
		}
		b.children = append(b.children, b.pending...)
		b.pending = nil
	}
	b.children = append(b.children, leaf)
	b.offset = tok.End
}

// Error records a diagnostic; the tree is not affected.
func (b *Builder) Error(message string, span Span) {
	b.diagnostics = append(b.diagnostics, Diagnostic{Severity: SeverityError, Message: message, Span: span})
}

// Offset returns the end of the last significant token.
func (b *Builder) Offset() int {
	return b.offset
}

// Finish returns the single root node and the recorded diagnostics.
func (b *Builder) Finish() (*Node, []Diagnostic) {
	if len(b.open) != 0 {
		panic(fmt.Sprintf("Finish with %d open nodes", len(b.open)))
	}
	if len(b.children) != 1 {
		panic(fmt.Sprintf("Finish with %d root nodes", len(b.children)))
	}
	return b.children[0], b.diagnostics
}

func (n *Node) isTrivia() bool {
	return n.token != nil && n.token.IsTrivia()
}
