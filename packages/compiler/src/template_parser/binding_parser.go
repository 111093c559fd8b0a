package template_parser

import (
	"github.com/sirupsen/logrus"

	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/util"
)

// ParsedBinding is a site together with the tree parsed from it. Tree is nil
// when the site could not be parsed at all (a `*` attribute without a name).
type ParsedBinding struct {
	Site *BindingSite
	Tree *expression_parser.Tree
}

// BindingParser parses the bindings of templates and collects every
// problem as a located ParseError.
type BindingParser struct {
	exprParser *expression_parser.Parser
	log        logrus.FieldLogger
	Errors     []*util.ParseError
}

// NewBindingParser creates a new BindingParser
func NewBindingParser(exprParser *expression_parser.Parser, log logrus.FieldLogger) *BindingParser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BindingParser{
		exprParser: exprParser,
		log:        log,
	}
}

// GetErrors returns the errors
func (bp *BindingParser) GetErrors() []*util.ParseError {
	return bp.Errors
}

// ParseTemplate scans file and parses each binding site found.
func (bp *BindingParser) ParseTemplate(file *util.ParseSourceFile) []*ParsedBinding {
	sites, errors := ScanTemplate(file)
	bp.Errors = append(bp.Errors, errors...)

	bindings := make([]*ParsedBinding, 0, len(sites))
	for _, site := range sites {
		bindings = append(bindings, bp.ParseSite(file, site))
	}
	bp.log.WithFields(logrus.Fields{
		"file":     file.URL,
		"bindings": len(bindings),
		"errors":   len(bp.Errors),
	}).Debug("parsed template")
	return bindings
}

// ParseSite parses one site; its diagnostics are reported against file.
func (bp *BindingParser) ParseSite(file *util.ParseSourceFile, site *BindingSite) *ParsedBinding {
	span := site.Span(file)
	switch site.Kind {
	case SiteProperty, SiteTwoWay:
		if site.Name == "" {
			bp.reportError("Property name is missing in binding", span, util.ParseErrorLevelError)
		}
	case SiteEvent:
		if site.Name == "" {
			bp.reportError("Event name is missing in binding", span, util.ParseErrorLevelError)
		}
	}

	tree, err := bp.exprParser.Parse(site.Text, site.Mode)
	if err != nil {
		bp.reportError(err.Error(), span, util.ParseErrorLevelError)
		return &ParsedBinding{Site: site}
	}
	for _, d := range tree.Diagnostics {
		bp.Errors = append(bp.Errors, d.ParseError(file, site.Offset))
	}

	// Don't validate the expression shape if there were parsing errors to
	// avoid adding more noise to the error logs.
	if !tree.HasErrors() {
		switch site.Kind {
		case SiteEvent:
			if isEmptyExpr(tree) {
				bp.reportError("Empty expressions are not allowed", span, util.ParseErrorLevelError)
			}
		case SiteInterpolation:
			if isEmptyExpr(tree) {
				bp.reportError("Blank expressions are not allowed in interpolated strings", span, util.ParseErrorLevelError)
			}
		case SiteTwoWay:
			if !isAllowedAssignmentEvent(rootExpression(tree)) {
				bp.reportError("Unsupported expression in a two-way binding", span, util.ParseErrorLevelError)
			}
		}
	}
	return &ParsedBinding{Site: site, Tree: tree}
}

// reportError reports an error
func (bp *BindingParser) reportError(
	message string,
	sourceSpan *util.ParseSourceSpan,
	level util.ParseErrorLevel,
) {
	err := util.NewParseError(sourceSpan, message)
	err.Level = level
	bp.Errors = append(bp.Errors, err)
}

// rootExpression returns the first expression under the root, looking
// through an action's expression statement.
func rootExpression(tree *expression_parser.Tree) *expression_parser.Node {
	for _, c := range tree.Root.ChildNodes() {
		if c.Kind() == expression_parser.NodeExpressionStatement {
			return rootExpressionOf(c)
		}
		if c.Kind().IsExpression() {
			return c
		}
	}
	return nil
}

func rootExpressionOf(node *expression_parser.Node) *expression_parser.Node {
	for _, c := range node.ChildNodes() {
		if c.Kind().IsExpression() {
			return c
		}
	}
	return nil
}

func isEmptyExpr(tree *expression_parser.Tree) bool {
	children := tree.Root.ChildNodes()
	if len(children) == 0 {
		return true
	}
	kind := children[0].Kind()
	return kind == expression_parser.NodeEmptyExpression || kind == expression_parser.NodeEmptyStatement
}

// isAllowedAssignmentEvent checks if an expression can be written to by the
// event side of a two-way binding.
func isAllowedAssignmentEvent(node *expression_parser.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case expression_parser.NodeNonNull:
		return isAllowedAssignmentEvent(rootExpressionOf(node))
	case expression_parser.NodeCall:
		// $any(x) is transparent
		receiver := rootExpressionOf(node)
		args := node.FirstChildOfKind(expression_parser.NodeArguments)
		if receiver != nil && receiver.Kind() == expression_parser.NodeReference &&
			receiver.Data().String() == "$any" && args != nil && len(args.ChildNodes()) == 1 {
			return isAllowedAssignmentEvent(args.ChildNodes()[0])
		}
		return false
	case expression_parser.NodeReference:
		return true
	case expression_parser.NodeMember, expression_parser.NodeIndex:
		return !hasRecursiveSafeReceiver(node)
	}
	return false
}

// hasRecursiveSafeReceiver checks if any receiver in the access chain of node
// uses `?.`.
func hasRecursiveSafeReceiver(node *expression_parser.Node) bool {
	if node == nil {
		return false
	}
	switch data := node.Data().(type) {
	case *expression_parser.MemberData:
		if data.Safe {
			return true
		}
	case *expression_parser.AccessData:
		if data.Safe {
			return true
		}
	}
	switch node.Kind() {
	case expression_parser.NodeParenthesized, expression_parser.NodeMember,
		expression_parser.NodeIndex, expression_parser.NodeCall:
		return hasRecursiveSafeReceiver(rootExpressionOf(node))
	}
	return false
}
