package expression_parser

import (
	"regexp"

	"ngexpr-go/packages/compiler/src/core"
)

type blockParameterGrammar func(p *parseAST, index int)

// blockParameterGrammars dispatches on the block kind; each grammar gets
// the parameter index. Unknown blocks are skipped without diagnostics.
var blockParameterGrammars = map[BlockKind]blockParameterGrammar{
	BlockIf: func(p *parseAST, index int) {
		if index == 0 {
			p.parseChain(0, false)
		} else {
			p.parseAliasAsVariable()
		}
	},
	BlockElseIf: parsePrimaryExpressionParameter,
	BlockSwitch: parsePrimaryExpressionParameter,
	BlockCase:   parsePrimaryExpressionParameter,
	BlockFor: func(p *parseAST, index int) {
		if index == 0 {
			p.parseForLoopMainExpression()
		} else {
			p.parseForLoopLetOrTrackExpression()
		}
	},
	BlockDefer:       func(p *parseAST, _ int) { p.parseDeferTrigger() },
	BlockPlaceholder: func(p *parseAST, _ int) { p.parseDeferredTimeParameter() },
	BlockLoading:     func(p *parseAST, _ int) { p.parseDeferredTimeParameter() },
	BlockLet:         func(p *parseAST, _ int) { p.parseLetDefinition() },
}

func parsePrimaryExpressionParameter(p *parseAST, index int) {
	if index == 0 {
		p.parseChain(0, false)
	} else {
		p.skip()
	}
}

// parseBlockParameter parses one parameter of a control flow block. What
// the grammar leaves over is reported once and swept into a Skip node.
func (p *parseAST) parseBlockParameter() {
	if grammar, ok := blockParameterGrammars[p.mode.Block()]; ok {
		grammar(p, p.mode.ParameterIndex)
	} else {
		p.skip()
	}
	if !p.atEOF() {
		p.error(unexpectedToken(p.next()))
	}
	p.skip()
}

// parseAliasAsVariable parses `as name` of `@if (cond; as name)`.
func (p *parseAST) parseAliasAsVariable() {
	if !p.isParameterName(parameterAs) {
		p.skip()
		return
	}
	p.advance()
	p.tryParseParameterVariable()
}

func (p *parseAST) tryParseParameterVariable() bool {
	tok := p.next()
	if !isReferenceToken(tok) {
		p.error(msgIdentifierExpected)
		return false
	}
	cp := p.checkpoint()
	p.advance()
	p.wrap(cp, NodeBlockParameterVariable, &NameData{Name: tok.StrValue})
	p.wrap(cp, NodeVarStatement, nil)
	return true
}

// parseForLoopMainExpression parses `item of items`, optionally wrapped in
// parentheses.
func (p *parseAST) parseForLoopMainExpression() {
	parens := 0
	for p.consumeOptionalCharacter(core.CharLPAREN) {
		parens++
	}
	p.tryParseParameterVariable()
	if tok := p.next(); tok.IsIdentifier() && tok.StrValue == "of" {
		p.advance()
	} else {
		p.error(msgExpectedOf)
	}
	p.parseChain(parens, false)
}

// parseForLoopLetOrTrackExpression parses `let a = $index, b = $odd` or
// `track expr`.
func (p *parseAST) parseForLoopLetOrTrackExpression() {
	switch {
	case p.isParameterName(parameterLet):
		p.advance()
		if p.atEOF() {
			p.error(msgIdentifierExpected)
			return
		}
		p.start(NodeVarStatement)
		for !p.atEOF() {
			p.parseForLoopVariable()
			if !p.atEOF() && !p.next().IsCharacter(core.CharCOMMA) {
				p.error(msgExpectedComma)
			} else {
				p.advance()
			}
		}
		p.finish(nil)
	case p.isParameterName(parameterTrack):
		p.advance()
		p.parseChain(0, false)
	default:
		switch tok := p.next(); {
		case tok == EOF:
		case tok.Type == TokenTypeBlockParameterName:
			p.error(unknownForParameter(tok.StrValue))
		default:
			p.error(unexpectedToken(tok))
		}
		p.skip()
	}
}

func (p *parseAST) parseForLoopVariable() {
	p.start(NodeBlockParameterVariable)
	name := ""
	if tok := p.next(); isReferenceToken(tok) {
		name = tok.StrValue
		p.advance()
	} else {
		p.error(msgIdentifierExpected)
		if !tok.IsOperator("=") && !tok.IsCharacter(core.CharCOMMA) {
			p.advance()
		}
	}
	if !p.consumeOptionalOperator("=") {
		p.error(msgEqualExpected)
	}
	switch tok := p.next(); {
	case isReferenceToken(tok):
		p.parseReference()
	case tok.IsCharacter(core.CharCOMMA):
		p.error(msgIdentifierExpected)
	default:
		p.errorToken(msgIdentifierExpected)
	}
	p.finish(&NameData{Name: name})
}

// parseDeferTrigger parses `[prefetch|hydrate] (when expr | on triggers)`
// and `hydrate never`.
func (p *parseAST) parseDeferTrigger() {
	prefetch := p.isParameterName(parameterPrefetch)
	hydrate := !prefetch && p.isParameterName(parameterHydrate)
	if prefetch || hydrate {
		prefix := p.next()
		p.start(NodeBlockParameterPrefix)
		p.advance()
		p.finish(&NameData{Name: prefix.StrValue})
	}

	switch {
	case p.isParameterName(parameterWhen):
		p.advance()
		p.parseChain(0, false)
	case p.isParameterName(parameterOn):
		p.advance()
		p.parseOnTriggers()
	case hydrate && p.isParameterName(parameterNever):
		p.advance()
	default:
		switch tok := p.next(); {
		case prefetch:
			p.error(msgExpectedOnWhen)
		case hydrate:
			p.error(msgExpectedOnWhenNever)
		case tok.Type == TokenTypeBlockParameterName:
			p.error(unknownDeferParameter(tok.StrValue))
		}
		p.skip()
	}
}

// parseOnTriggers parses a comma separated list of triggers:
// `idle, timer(500ms), viewport(ref)`.
func (p *parseAST) parseOnTriggers() {
	for {
		if !p.parseOnTrigger() {
			p.skip()
			return
		}
		if !p.consumeOptionalCharacter(core.CharCOMMA) {
			return
		}
	}
}

func (p *parseAST) parseOnTrigger() bool {
	tok := p.next()
	if !isReferenceToken(tok) {
		p.error(msgIdentifierExpected)
		return false
	}
	p.start(NodeDeferTrigger)
	data := &TriggerData{Name: tok.StrValue}
	p.parseReference()
	if p.atEOF() || p.next().IsCharacter(core.CharCOMMA) {
		p.finish(data)
		return true
	}
	if !p.consumeOptionalCharacter(core.CharLPAREN) {
		p.error(msgLParenExpected)
		p.finish(data)
		return false
	}
	switch arg := p.next(); {
	case isReferenceToken(arg):
		p.parseReference()
	case arg.IsNumber():
		p.parseDeferredTime(core.CharRPAREN)
	case arg != EOF:
		p.error(unexpectedToken(arg))
		p.finish(data)
		return false
	}
	if !p.consumeOptionalCharacter(core.CharRPAREN) {
		p.error(msgRParenExpected)
		p.finish(data)
		return false
	}
	p.finish(data)
	return true
}

// parseDeferredTimeParameter parses `minimum 500ms` / `after 1s` of
// @placeholder and @loading; a bare time is accepted as well.
func (p *parseAST) parseDeferredTimeParameter() {
	switch tok := p.next(); {
	case tok.Type == TokenTypeBlockParameterName:
		p.advance()
		p.parseDeferredTime(0)
	case tok.IsNumber():
		p.parseDeferredTime(0)
	default:
		p.skip()
	}
}

// parseLetDefinition parses `name = expr` of `@let`.
func (p *parseAST) parseLetDefinition() {
	tok := p.next()
	if !isReferenceToken(tok) {
		p.error(msgIdentifierExpected)
		p.skip()
		return
	}
	cp := p.checkpoint()
	p.advance()
	switch {
	case !p.consumeOptionalOperator("="):
		p.error(msgEqualExpected)
		p.skip()
	case p.atEOF():
		p.error(msgExpressionExpected)
	default:
		p.parseChain(0, true)
	}
	p.wrap(cp, NodeBlockParameterVariable, &NameData{Name: tok.StrValue})
	p.wrap(cp, NodeVarStatement, nil)
}

var (
	deferredTimeMagnitude = regexp.MustCompile(`^[0-9]+\.?[0-9]*$`)
	timeUnits             = []string{"ms", "s"}
)

// parseDeferredTime parses `NUMBER (ms|s)?`. Parsing stops at end, which
// stays unconsumed; 0 means end of input.
func (p *parseAST) parseDeferredTime(end rune) {
	tok := p.next()
	if !tok.IsNumber() {
		p.error(msgExpectedNumericLiteral)
		p.skip()
		return
	}
	p.start(NodeDeferredTimeLiteral)
	data := &DeferredTimeData{Unit: "ms", Valid: true}
	if !deferredTimeMagnitude.MatchString(tok.Raw) {
		p.errorToken(msgBadDeferredTimeFormat)
		data.Valid = false
	} else {
		data.Magnitude = tok.NumValue
		i := p.significant(0)
		p.advance()
		if i+2 < len(p.tokens) && p.tokens[i+1].Type == TokenTypeWhitespace && p.tokens[i+2].IsIdentifier() {
			p.b.Error(msgUnexpectedWhitespace, p.tokens[i+1].Span())
		}
	}
	if unit := p.next(); unit.IsIdentifier() {
		if unit.StrValue == "s" || unit.StrValue == "ms" {
			data.Unit = unit.StrValue
			p.advance()
		} else {
			p.errorToken(unknownTimeUnit(unit.StrValue))
			data.Valid = false
		}
	}
	p.finish(data)

	if p.atEOF() || (end != 0 && p.next().IsCharacter(end)) {
		return
	}
	p.error(unexpectedToken(p.next()))
	if end == 0 {
		p.skip()
	} else {
		p.skipUntil(end)
	}
}
