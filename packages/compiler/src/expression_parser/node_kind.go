package expression_parser

import "fmt"

// NodeKind tags a CST node.
type NodeKind int

const (
	NodeToken NodeKind = iota

	// roots, one per parse mode
	NodeAction
	NodeBinding
	NodeSimpleBinding
	NodeInterpolation
	NodeTemplateBindings
	NodeBlockParameter

	// statements and structure
	NodeChain
	NodeExpressionStatement
	NodeEmptyStatement
	NodeEmptyExpression
	NodeQuote
	NodeQuoteText
	NodeVarStatement
	NodeTemplateBinding
	NodeTemplateBindingKey
	NodeTemplateVariable
	NodeBlockParameterVariable
	NodeBlockParameterPrefix
	NodeSkip
	NodeError

	// expressions
	NodePipe
	NodePipeName
	NodePipeArguments
	NodeAssignment
	NodeDefinition
	NodeConditional
	NodeBinary
	NodePrefix
	NodeNonNull
	NodeCall
	NodeArguments
	NodeIndex
	NodeMember
	NodeReference
	NodeLiteral
	NodeStringPartsLiteral
	NodeArrayLiteral
	NodeObjectLiteral
	NodeProperty
	NodeParenthesized
	NodeThis
	NodeDeferredTimeLiteral
	NodeDeferTrigger
)

var nodeKindNames = [...]string{
	NodeToken:                  "Token",
	NodeAction:                 "Action",
	NodeBinding:                "Binding",
	NodeSimpleBinding:          "SimpleBinding",
	NodeInterpolation:          "Interpolation",
	NodeTemplateBindings:       "TemplateBindings",
	NodeBlockParameter:         "BlockParameter",
	NodeChain:                  "Chain",
	NodeExpressionStatement:    "ExpressionStatement",
	NodeEmptyStatement:         "EmptyStatement",
	NodeEmptyExpression:        "EmptyExpression",
	NodeQuote:                  "Quote",
	NodeQuoteText:              "QuoteText",
	NodeVarStatement:           "VarStatement",
	NodeTemplateBinding:        "TemplateBinding",
	NodeTemplateBindingKey:     "TemplateBindingKey",
	NodeTemplateVariable:       "TemplateVariable",
	NodeBlockParameterVariable: "BlockParameterVariable",
	NodeBlockParameterPrefix:   "BlockParameterPrefix",
	NodeSkip:                   "Skip",
	NodeError:                  "Error",
	NodePipe:                   "Pipe",
	NodePipeName:               "PipeName",
	NodePipeArguments:          "PipeArguments",
	NodeAssignment:             "Assignment",
	NodeDefinition:             "Definition",
	NodeConditional:            "Conditional",
	NodeBinary:                 "Binary",
	NodePrefix:                 "Prefix",
	NodeNonNull:                "NonNull",
	NodeCall:                   "Call",
	NodeArguments:              "Arguments",
	NodeIndex:                  "Index",
	NodeMember:                 "Member",
	NodeReference:              "Ref",
	NodeLiteral:                "Lit",
	NodeStringPartsLiteral:     "StringParts",
	NodeArrayLiteral:           "Array",
	NodeObjectLiteral:          "Object",
	NodeProperty:               "Property",
	NodeParenthesized:          "Paren",
	NodeThis:                   "This",
	NodeDeferredTimeLiteral:    "DeferredTime",
	NodeDeferTrigger:           "Trigger",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// IsRoot reports whether k is the root kind of some parse mode.
func (k NodeKind) IsRoot() bool {
	return k >= NodeAction && k <= NodeBlockParameter
}

// IsExpression reports whether nodes of kind k evaluate to a value.
func (k NodeKind) IsExpression() bool {
	switch k {
	case NodePipeName, NodePipeArguments, NodeArguments, NodeProperty, NodeDeferTrigger:
		return false
	}
	return k >= NodePipe || k == NodeEmptyExpression
}

func rootKind(mode ModeKind) NodeKind {
	switch mode {
	case ModeBinding:
		return NodeBinding
	case ModeSimpleBinding:
		return NodeSimpleBinding
	case ModeInterpolation:
		return NodeInterpolation
	case ModeTemplateBindings:
		return NodeTemplateBindings
	case ModeBlockParameter:
		return NodeBlockParameter
	}
	return NodeAction
}
