package expression_parser

import (
	"strings"
)

// Unparser prints a tree back as normalized expression source: single
// spaces around binary operators, pipes parenthesized, strings double
// quoted, statements of a chain terminated by `;`. Error placeholders print
// as nothing.
type Unparser struct {
	source     string
	expression strings.Builder
}

// NewUnparser creates a new Unparser for trees parsed from source
func NewUnparser(source string) *Unparser {
	return &Unparser{source: source}
}

// Unparse renders the tree's root.
func Unparse(tree *Tree) string {
	return NewUnparser(tree.Source).Unparse(tree.Root)
}

// Unparse renders node to string
func (u *Unparser) Unparse(node *Node) string {
	u.expression.Reset()
	u.visit(node)
	return strings.TrimSpace(u.expression.String())
}

func (u *Unparser) write(s ...string) {
	for _, part := range s {
		u.expression.WriteString(part)
	}
}

func (u *Unparser) visit(node *Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case NodeAction, NodeBinding, NodeSimpleBinding, NodeInterpolation:
		u.visitList(node.ChildNodes(), "; ")
	case NodeTemplateBindings:
		u.visitList(node.ChildNodes(), "; ")
	case NodeBlockParameter:
		u.visitList(node.ChildNodes(), " ")
	case NodeChain:
		for _, c := range node.ChildNodes() {
			if c.Kind() == NodeExpressionStatement {
				u.visit(c)
				u.write("; ")
			}
		}
	case NodeExpressionStatement, NodeDefinition, NodeVarStatement:
		u.visitList(node.ChildNodes(), " ")
	case NodeQuote:
		data := node.Data().(*QuoteData)
		u.write(data.Prefix, ":", data.Payload)
	case NodePipe:
		u.visitPipe(node)
	case NodePipeName, NodeReference, NodeTemplateBindingKey, NodeTemplateVariable, NodeBlockParameterPrefix:
		u.write(node.Data().String())
	case NodeAssignment:
		u.visitAssignment(node)
	case NodeConditional:
		u.visitConditional(node)
	case NodeBinary:
		u.visitBinary(node)
	case NodePrefix:
		u.visitPrefix(node)
	case NodeNonNull:
		u.visit(firstExpression(node))
		u.write("!")
	case NodeCall:
		u.visitCall(node)
	case NodeArguments, NodePipeArguments:
		u.visitList(node.ChildNodes(), ", ")
	case NodeIndex:
		u.visitKeyedRead(node)
	case NodeMember:
		u.visitMember(node)
	case NodeThis:
		u.write("this")
	case NodeLiteral, NodeStringPartsLiteral:
		u.visitLiteral(node)
	case NodeArrayLiteral:
		u.write("[")
		u.visitList(node.ChildNodes(), ", ")
		u.write("]")
	case NodeObjectLiteral:
		u.write("{")
		u.visitList(node.ChildNodes(), ", ")
		u.write("}")
	case NodeProperty:
		u.visitProperty(node)
	case NodeParenthesized:
		u.write("(")
		u.visit(firstExpression(node))
		u.write(")")
	case NodeTemplateBinding:
		u.visitTemplateBinding(node)
	case NodeBlockParameterVariable:
		u.write(node.Data().String())
		if value := firstExpression(node); value != nil {
			u.write(" = ")
			u.visit(value)
		}
	case NodeDeferTrigger:
		u.visitTrigger(node)
	case NodeDeferredTimeLiteral:
		u.write(node.Data().String())
	}
}

func (u *Unparser) visitList(nodes []*Node, separator string) {
	first := true
	for _, n := range nodes {
		if n.Kind() == NodeError || n.Kind() == NodeSkip {
			continue
		}
		if !first {
			u.write(separator)
		}
		first = false
		u.visit(n)
	}
}

// firstExpression returns the first child that is an expression.
func firstExpression(node *Node) *Node {
	for _, c := range node.ChildNodes() {
		if c.Kind().IsExpression() {
			return c
		}
	}
	return nil
}

func expressions(node *Node) []*Node {
	var exprs []*Node
	for _, c := range node.ChildNodes() {
		if c.Kind().IsExpression() || c.Kind() == NodeError {
			exprs = append(exprs, c)
		}
	}
	return exprs
}

func (u *Unparser) visitProperty(node *Node) {
	// quoted keys keep their quotes
	if key := node.Children()[0]; key.Token() != nil {
		u.write(key.Token().Raw)
	} else {
		u.write(node.Data().String())
	}
	u.write(": ")
	u.visit(firstExpression(node))
}

func (u *Unparser) visitPipe(node *Node) {
	u.write("(")
	u.visit(firstExpression(node))
	u.write(" | ", node.Data().String())
	if args := node.FirstChildOfKind(NodePipeArguments); args != nil {
		for _, arg := range args.ChildNodes() {
			u.write(":")
			u.visit(arg)
		}
	}
	u.write(")")
}

func (u *Unparser) visitAssignment(node *Node) {
	operands := expressions(node)
	if len(operands) > 0 && operands[0].Kind() == NodeDefinition {
		u.visit(operands[0])
		operands = operands[1:]
	}
	u.write(" = ")
	if len(operands) > 0 {
		u.visit(operands[0])
	}
}

func (u *Unparser) visitConditional(node *Node) {
	operands := expressions(node)
	for i, op := range operands {
		switch i {
		case 1:
			u.write(" ? ")
		case 2:
			u.write(" : ")
		}
		u.visit(op)
	}
}

func (u *Unparser) visitBinary(node *Node) {
	operands := expressions(node)
	if len(operands) > 0 {
		u.visit(operands[0])
	}
	u.write(" ", node.Data().String(), " ")
	if len(operands) > 1 {
		u.visit(operands[1])
	}
}

func (u *Unparser) visitPrefix(node *Node) {
	op := node.Data().String()
	u.write(op)
	if prefixKeywords[op] {
		u.write(" ")
	}
	u.visit(firstExpression(node))
}

func (u *Unparser) visitCall(node *Node) {
	u.visit(firstExpression(node))
	if node.Data().(*AccessData).Safe {
		u.write("?.")
	}
	u.write("(")
	u.visit(node.FirstChildOfKind(NodeArguments))
	u.write(")")
}

func (u *Unparser) visitKeyedRead(node *Node) {
	operands := expressions(node)
	u.visit(operands[0])
	if node.Data().(*AccessData).Safe {
		u.write("?.")
	}
	u.write("[")
	if len(operands) > 1 {
		u.visit(operands[1])
	}
	u.write("]")
}

func (u *Unparser) visitMember(node *Node) {
	data := node.Data().(*MemberData)
	u.visit(firstExpression(node))
	if data.Safe {
		u.write("?.")
	} else {
		u.write(".")
	}
	u.write(data.Name)
}

func (u *Unparser) visitLiteral(node *Node) {
	data := node.Data().(*LiteralData)
	if data.Kind == LiteralString {
		u.write(`"`, data.Value.(string), `"`)
		return
	}
	u.write(node.Text(u.source))
}

func (u *Unparser) visitTemplateBinding(node *Node) {
	data := node.Data().(*TemplateBindingData)
	if data.KeyKind != KeyKindBinding {
		u.write("let ", data.Key, "=", data.Name)
		return
	}
	u.write(data.Key)
	if value := firstExpression(node); value != nil {
		u.write("=")
		u.visit(value)
	}
}

func (u *Unparser) visitTrigger(node *Node) {
	u.write(node.Data().String())
	children := node.ChildNodes()
	if len(children) > 1 {
		u.write("(")
		u.visit(children[1])
		u.write(")")
	}
}
