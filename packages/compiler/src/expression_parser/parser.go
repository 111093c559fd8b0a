package expression_parser

import (
	"github.com/sirupsen/logrus"
)

// Tree is the result of one parse: the root node (its kind is determined by
// the mode) and the diagnostics in source order of discovery.
type Tree struct {
	Source      string
	Mode        Mode
	Root        *Node
	Diagnostics []Diagnostic
}

func (t *Tree) HasErrors() bool {
	return len(t.Diagnostics) > 0
}

// TemplateBinding is a flattened view of a TemplateBinding node.
type TemplateBinding struct {
	Key     string
	KeyKind KeyKind
	// Name is the aliased value of a variable binding
	Name string
	// Expression is the bound value of a KeyKindBinding, nil when absent
	Expression *Node
	Span       Span
}

// TemplateBindings returns the bindings of a TemplateBindings tree.
func (t *Tree) TemplateBindings() []TemplateBinding {
	if t.Root.Kind() != NodeTemplateBindings {
		return nil
	}
	var bindings []TemplateBinding
	for _, n := range t.Root.ChildNodes() {
		data, ok := n.Data().(*TemplateBindingData)
		if n.Kind() != NodeTemplateBinding || !ok {
			continue
		}
		binding := TemplateBinding{Key: data.Key, KeyKind: data.KeyKind, Name: data.Name, Span: n.Span()}
		for _, c := range n.ChildNodes() {
			if c.Kind().IsExpression() {
				binding.Expression = c
				break
			}
		}
		bindings = append(bindings, binding)
	}
	return bindings
}

// Parser parses template expressions. It holds no per-parse state and is
// safe for concurrent use.
type Parser struct {
	lexer *Lexer
	log   logrus.FieldLogger
}

type ParserOption func(*Parser)

// WithLogger sets the logger used for parse summaries.
func WithLogger(log logrus.FieldLogger) ParserOption {
	return func(p *Parser) {
		p.log = log
	}
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer, opts ...ParserOption) *Parser {
	p := &Parser{
		lexer: lexer,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text in the given mode. Malformed input never fails: it
// yields diagnostics. An error is only returned for a mode missing its
// template key or block name.
func (p *Parser) Parse(text string, mode Mode) (*Tree, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	tokens := p.lexer.Tokenize(text, mode)
	root, diagnostics := newParseAST(text, mode, tokens).parseRoot()
	tree := &Tree{
		Source:      text,
		Mode:        mode,
		Root:        root,
		Diagnostics: diagnostics,
	}
	p.log.WithFields(logrus.Fields{
		"mode":        mode.String(),
		"tokens":      len(tokens),
		"diagnostics": len(diagnostics),
	}).Debug("parsed expression")
	return tree, nil
}

func (p *Parser) mustParse(text string, mode Mode) *Tree {
	tree, err := p.Parse(text, mode)
	if err != nil {
		// unreachable: the fixed modes always validate
		panic(err)
	}
	return tree
}

// ParseAction parses an event handler: a `;` separated chain of statements.
func (p *Parser) ParseAction(text string) *Tree {
	return p.mustParse(text, ActionMode())
}

// ParseBinding parses a property binding
func (p *Parser) ParseBinding(text string) *Tree {
	return p.mustParse(text, BindingMode())
}

// ParseSimpleBinding parses a host binding, where pipes are not allowed and
// the expression is required.
func (p *Parser) ParseSimpleBinding(text string) *Tree {
	return p.mustParse(text, SimpleBindingMode())
}

// ParseInterpolation parses the content of one `{{ }}` interpolation.
func (p *Parser) ParseInterpolation(text string) *Tree {
	return p.mustParse(text, InterpolationMode())
}

// ParseTemplateBindings parses the microsyntax of a structural directive
// attribute such as `*ngFor="let item of items"`.
func (p *Parser) ParseTemplateBindings(templateKey, text string) (*Tree, error) {
	return p.Parse(text, TemplateBindingsMode(templateKey))
}

// ParseBlockParameter parses the parameter at index of a control flow block.
func (p *Parser) ParseBlockParameter(blockName string, index int, text string) (*Tree, error) {
	return p.Parse(text, BlockParameterMode(blockName, index))
}

// parseAST is the per-parse cursor over the token stream. Trivia tokens are
// invisible to the grammar; the builder places them once the next
// significant token is consumed.
type parseAST struct {
	input  string
	mode   Mode
	tokens []*Token
	// index of the first token not yet attached to the tree
	index int
	b     *Builder
}

func newParseAST(input string, mode Mode, tokens []*Token) *parseAST {
	return &parseAST{
		input:  input,
		mode:   mode,
		tokens: tokens,
		b:      NewBuilder(),
	}
}

func (p *parseAST) isAction() bool {
	return p.mode.Kind == ModeAction
}

func (p *parseAST) isSimpleBinding() bool {
	return p.mode.Kind == ModeSimpleBinding
}

// significant returns the position of the n-th significant token at or
// after the cursor, or len(tokens).
func (p *parseAST) significant(n int) int {
	i := p.index
	for ; i < len(p.tokens); i++ {
		if p.tokens[i].IsTrivia() {
			continue
		}
		if n == 0 {
			return i
		}
		n--
	}
	return i
}

// peek returns the significant token at the given offset
func (p *parseAST) peek(offset int) *Token {
	if i := p.significant(offset); i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

// next returns the next significant token
func (p *parseAST) next() *Token {
	return p.peek(0)
}

// rawAfterNext returns the token right after the next significant one,
// trivia included.
func (p *parseAST) rawAfterNext() *Token {
	if i := p.significant(0) + 1; i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

// atEOF checks if all significant tokens have been processed
func (p *parseAST) atEOF() bool {
	return p.next() == EOF
}

// flushTrivia hands pending trivia to the builder.
func (p *parseAST) flushTrivia() {
	for p.index < len(p.tokens) && p.tokens[p.index].IsTrivia() {
		p.attach(p.tokens[p.index], true)
		p.index++
	}
}

func (p *parseAST) attach(tok *Token, report bool) {
	p.b.Token(tok)
	if report && tok.Err != "" {
		p.b.Error(tok.Err, tok.Span())
	}
}

// advance consumes the next significant token
func (p *parseAST) advance() {
	p.flushTrivia()
	if p.index < len(p.tokens) {
		p.attach(p.tokens[p.index], true)
		p.index++
	}
}

// advanceQuiet consumes the next token without reporting its lexical error.
func (p *parseAST) advanceQuiet() {
	p.flushTrivia()
	if p.index < len(p.tokens) {
		p.attach(p.tokens[p.index], false)
		p.index++
	}
}

func (p *parseAST) start(kind NodeKind) {
	p.flushTrivia()
	p.b.StartNode(kind)
}

func (p *parseAST) checkpoint() Checkpoint {
	p.flushTrivia()
	return p.b.Checkpoint()
}

func (p *parseAST) finish(data NodeData) *Node {
	return p.b.FinishNode(data)
}

func (p *parseAST) wrap(cp Checkpoint, kind NodeKind, data NodeData) *Node {
	return p.b.Wrap(cp, kind, data)
}

// empty adds a childless node at the end of the last significant token.
func (p *parseAST) empty(kind NodeKind) *Node {
	p.b.StartNode(kind)
	return p.b.FinishNode(nil)
}

// consumeOptionalCharacter consumes an optional character
func (p *parseAST) consumeOptionalCharacter(code rune) bool {
	if p.next().IsCharacter(code) {
		p.advance()
		return true
	}
	return false
}

// consumeOptionalOperator consumes an optional operator
func (p *parseAST) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

// expectCharacter consumes an expected character or reports message
func (p *parseAST) expectCharacter(code rune, message string) bool {
	if p.consumeOptionalCharacter(code) {
		return true
	}
	p.error(message)
	return false
}

func (p *parseAST) isParameterName(name string) bool {
	return p.next().IsBlockParameterName(name)
}

// currentSpan is the span of the next significant token, or an empty span
// after the last consumed token at end of input.
func (p *parseAST) currentSpan() Span {
	if tok := p.next(); tok != EOF {
		return tok.Span()
	}
	end := p.b.Offset()
	for i := p.index - 1; i >= 0; i-- {
		if !p.tokens[i].IsTrivia() {
			end = p.tokens[i].End
			break
		}
	}
	return Span{Start: end, End: end}
}

// error reports a diagnostic at the next token
func (p *parseAST) error(message string) {
	p.b.Error(message, p.currentSpan())
}

// errorToken consumes the next token into an Error node and reports message
// on it. Tokens the lexer already rejected only carry the lexical error.
func (p *parseAST) errorToken(message string) {
	p.start(NodeError)
	if !p.next().IsError() {
		p.error(message)
	}
	p.advance()
	p.finish(nil)
}

// expressionExpected reports a missing expression and consumes the
// offending token so the caller always makes progress.
func (p *parseAST) expressionExpected() {
	p.errorToken(msgExpressionExpected)
}

// skip sweeps every remaining token into a Skip node.
func (p *parseAST) skip() {
	if p.atEOF() {
		return
	}
	p.start(NodeSkip)
	for !p.atEOF() {
		p.advanceQuiet()
	}
	p.finish(nil)
}

// skipUntil consumes tokens until end is reached without consuming it.
func (p *parseAST) skipUntil(end rune) {
	if p.atEOF() || p.next().IsCharacter(end) {
		return
	}
	p.start(NodeSkip)
	for !p.atEOF() && !p.next().IsCharacter(end) {
		p.advanceQuiet()
	}
	p.finish(nil)
}

// skipGroup consumes the rest of a group into a Skip node, nested groups
// included, then consumes its closing character if present.
func (p *parseAST) skipGroup(open, close rune) {
	if !p.atEOF() && !p.next().IsCharacter(close) {
		p.start(NodeSkip)
		for depth := 0; !p.atEOF(); p.advanceQuiet() {
			if tok := p.next(); tok.IsCharacter(close) {
				if depth == 0 {
					break
				}
				depth--
			} else if tok.IsCharacter(open) {
				depth++
			}
		}
		p.finish(nil)
	}
	p.consumeOptionalCharacter(close)
}

func (p *parseAST) parseRoot() (*Node, []Diagnostic) {
	p.b.StartNode(rootKind(p.mode.Kind))

	var data NodeData
	switch p.mode.Kind {
	case ModeAction, ModeInterpolation:
		p.parseChain(0, true)
	case ModeBinding:
		if !p.parseQuote() {
			p.parseChain(0, true)
		}
	case ModeSimpleBinding:
		if !p.parseQuote() {
			p.parseChain(0, false)
		}
	case ModeTemplateBindings:
		data = &TemplateBindingsData{TemplateKey: p.mode.TemplateKey}
		p.parseTemplateBindings(p.mode.TemplateKey)
	case ModeBlockParameter:
		data = &BlockParameterData{BlockName: p.mode.BlockName, Block: p.mode.Block(), Index: p.mode.ParameterIndex}
		p.parseBlockParameter()
	}

	// trailing trivia belongs to the root
	for p.index < len(p.tokens) {
		p.advance()
	}
	p.b.FinishNode(data)
	return p.b.Finish()
}
