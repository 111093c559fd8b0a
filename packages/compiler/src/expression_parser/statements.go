package expression_parser

import (
	"strings"

	"ngexpr-go/packages/compiler/src/core"
)

// parseChain parses `;` separated expressions up to end of input. In action
// mode each expression becomes an ExpressionStatement and two or more of
// them a Chain; elsewhere the expressions stay direct children of the
// parent and chaining is reported. openParens counts `(` already consumed
// by the caller whose `)` may appear after an expression.
func (p *parseAST) parseChain(openParens int, allowEmpty bool) {
	cp := p.checkpoint()
	count := 0
	parenExpectedReported := false
	// a token reported as unexpected is left for the next expression
	var reported *Token
	for !p.atEOF() {
		count++
		expression := p.checkpoint()
		if !p.parsePipe() {
			if p.next() == reported {
				p.start(NodeError)
				p.advance()
				p.finish(nil)
			} else {
				p.expressionExpected()
			}
		} else if p.isAction() {
			p.wrap(expression, NodeExpressionStatement, nil)
		}

		tok := p.next()
		switch {
		case tok.IsCharacter(core.CharSEMICOLON):
			if !p.isAction() {
				p.error(msgChainInBinding)
			}
			for p.consumeOptionalCharacter(core.CharSEMICOLON) {
				// read all semicolons
			}
		case tok.IsCharacter(core.CharRPAREN) && openParens > 0:
			p.advance()
			openParens--
		case tok.IsError():
			p.errorToken("")
		case tok != EOF:
			if !parenExpectedReported && openParens > 0 {
				p.error(msgRParenExpected)
				parenExpectedReported = true
			} else {
				p.error(unexpectedToken(tok))
			}
			reported = tok
		}
	}
	if openParens > 0 {
		p.error(msgMissingRParen)
	}

	switch {
	case count == 0 && p.isAction():
		p.empty(NodeEmptyStatement)
	case count == 0:
		p.empty(NodeEmptyExpression)
		if !allowEmpty {
			p.error(msgExpressionExpected)
		}
	case count > 1 && p.isAction():
		p.wrap(cp, NodeChain, nil)
	}
}

// parseQuote parses the `prefix: anything` shorthand. The text after the
// colon is kept as opaque QuoteText.
func (p *parseAST) parseQuote() bool {
	prefix := p.next()
	if !IsIdentifierName(prefix) || !p.peek(1).IsCharacter(core.CharCOLON) {
		return false
	}
	p.start(NodeQuote)
	p.advance()
	colon := p.next()
	p.advance()

	// the payload is opaque: lexical errors inside it are not reported
	p.start(NodeQuoteText)
	for p.index < len(p.tokens) {
		p.attach(p.tokens[p.index], false)
		p.index++
	}
	p.finish(nil)
	p.finish(&QuoteData{
		Prefix:  prefix.StrValue,
		Payload: strings.TrimSpace(p.input[colon.End:]),
	})
	return true
}
