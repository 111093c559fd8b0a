package expression_parser

import (
	"fmt"
	"strings"
)

// Serialize renders the node structure compactly, token leaves omitted:
// `a | b:1` in a binding is `Binding(Pipe<b>(Ref<a>, PipeName<b>, PipeArguments(Lit<1>)))`.
func Serialize(node *Node) string {
	var sb strings.Builder
	serializeNode(&sb, node)
	return sb.String()
}

func serializeNode(sb *strings.Builder, node *Node) {
	sb.WriteString(node.Kind().String())
	if data := node.Data(); data != nil {
		if s := data.String(); s != "" {
			sb.WriteString("<")
			sb.WriteString(s)
			sb.WriteString(">")
		}
	}
	children := node.ChildNodes()
	if len(children) == 0 {
		return
	}
	sb.WriteString("(")
	for i, c := range children {
		if i > 0 {
			sb.WriteString(", ")
		}
		serializeNode(sb, c)
	}
	sb.WriteString(")")
}

// Dump renders the whole tree, one node per line with its span; token
// leaves show their type and text.
func Dump(node *Node) string {
	var sb strings.Builder
	dumpNode(&sb, node, 0)
	return sb.String()
}

func dumpNode(sb *strings.Builder, node *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if tok := node.Token(); tok != nil {
		fmt.Fprintf(sb, "%s@%s %q\n", tok.Type, node.Span(), tok.Raw)
		return
	}
	sb.WriteString(node.Kind().String())
	if data := node.Data(); data != nil {
		fmt.Fprintf(sb, "<%s>", data)
	}
	fmt.Fprintf(sb, "@%s\n", node.Span())
	for _, c := range node.Children() {
		dumpNode(sb, c, depth+1)
	}
}
