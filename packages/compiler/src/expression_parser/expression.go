package expression_parser

import (
	"strings"

	"ngexpr-go/packages/compiler/src/core"
)

// parsePipe parses `expr (| name (: arg)*)*`. Every `|` wraps what was
// parsed so far, which makes the chain left-associative.
func (p *parseAST) parsePipe() bool {
	cp := p.checkpoint()
	if !p.parseAssignmentChecked() {
		return false
	}
	for p.next().IsOperator("|") {
		if p.isSimpleBinding() {
			p.error(msgPipeInHostBinding)
		} else if p.isAction() {
			p.error(msgPipeInAction)
		}
		p.b.StartNodeAt(cp, NodePipe)
		p.advance()

		name := ""
		if tok := p.next(); IsIdentifierName(tok) {
			name = tok.StrValue
			p.start(NodePipeName)
			p.advance()
			p.finish(&NameData{Name: name})
		} else {
			p.error(msgIdentifierOrKeyword)
		}

		if p.next().IsCharacter(core.CharCOLON) {
			args := p.checkpoint()
			hasParams := false
			for p.consumeOptionalCharacter(core.CharCOLON) {
				if p.parseAssignmentChecked() {
					hasParams = true
				} else {
					p.error(msgExpressionExpected)
				}
			}
			if hasParams {
				p.wrap(args, NodePipeArguments, nil)
			}
		}
		p.finish(&NameData{Name: name})
	}
	return true
}

// parseAssignmentChecked parses a conditional optionally followed by
// `= pipe`. Assignments outside of actions are reported but kept in the
// tree so later passes still see both sides.
func (p *parseAST) parseAssignmentChecked() bool {
	cp := p.checkpoint()
	if p.next().IsOperator("=") {
		p.error(msgExpressionExpected)
		p.start(NodeAssignment)
		p.advance()
		p.parseAssignmentValue()
		p.finish(nil)
		return true
	}
	if !p.parseConditional() {
		return false
	}
	if p.next().IsOperator("=") {
		p.wrap(cp, NodeDefinition, nil)
		p.b.StartNodeAt(cp, NodeAssignment)
		if !p.isAction() {
			p.error(msgAssignmentInBinding)
		}
		p.advance()
		p.parseAssignmentValue()
		p.finish(nil)
	}
	return true
}

func (p *parseAST) parseAssignmentValue() {
	if !p.parsePipe() {
		p.error(msgExpressionExpected)
		p.empty(NodeError)
	}
}

// parseRequired parses with fn and leaves an Error placeholder when there
// is nothing to parse.
func (p *parseAST) parseRequired(fn func() bool) {
	if !fn() {
		p.error(msgExpressionExpected)
		p.empty(NodeError)
	}
}

// parseConditional parses a conditional expression
func (p *parseAST) parseConditional() bool {
	cp := p.checkpoint()
	if !p.parseBinary(0) {
		return false
	}
	if !p.next().IsOperator("?") {
		return true
	}
	p.b.StartNodeAt(cp, NodeConditional)
	p.advance()
	p.parseRequired(p.parsePipe)
	if p.expectCharacter(core.CharCOLON, msgColonExpected) {
		p.parseRequired(p.parsePipe)
	}
	p.finish(nil)
	return true
}

// parseBinary parses the binary operators of binaryLevels[level] and above.
func (p *parseAST) parseBinary(level int) bool {
	if level == len(binaryLevels) {
		return p.parsePrefix()
	}
	cp := p.checkpoint()
	if !p.parseBinary(level + 1) {
		return false
	}
	for {
		op := p.next()
		if !isBinaryOperator(op, level) {
			return true
		}
		p.b.StartNodeAt(cp, NodeBinary)
		p.advance()
		if level == exponentLevel {
			p.parseRequired(func() bool { return p.parseBinary(level) })
		} else {
			p.parseRequired(func() bool { return p.parseBinary(level + 1) })
		}
		p.finish(&OperatorData{Operator: op.StrValue})
	}
}

func isBinaryOperator(tok *Token, level int) bool {
	if tok.Type != TokenTypeOperator {
		return false
	}
	for _, op := range binaryLevels[level] {
		if tok.StrValue == op {
			return true
		}
	}
	return false
}

// parsePrefix parses a prefix expression
func (p *parseAST) parsePrefix() bool {
	tok := p.next()
	if (tok.Type == TokenTypeOperator && prefixOperators[tok.StrValue]) ||
		(tok.Type == TokenTypeKeyword && prefixKeywords[tok.StrValue]) {
		p.start(NodePrefix)
		p.advance()
		p.parseRequired(p.parsePrefix)
		p.finish(&OperatorData{Operator: tok.StrValue})
		return true
	}
	return p.parseCallChain()
}

// parseCallChain parses a primary expression followed by member access,
// keyed reads, calls and non-null assertions.
func (p *parseAST) parseCallChain() bool {
	cp := p.checkpoint()
	if !p.parsePrimary() {
		return false
	}
	for {
		tok := p.next()
		switch {
		case tok.IsCharacter(core.CharPERIOD):
			p.parseAccessMember(cp, false)
		case tok.IsOperator("?."):
			switch after := p.peek(1); {
			case after.IsCharacter(core.CharLBRACKET):
				p.parseKeyedRead(cp, true)
			case after.IsCharacter(core.CharLPAREN):
				p.parseCall(cp, true)
			default:
				p.parseAccessMember(cp, true)
			}
		case tok.IsCharacter(core.CharLBRACKET):
			p.parseKeyedRead(cp, false)
		case tok.IsCharacter(core.CharLPAREN):
			p.parseCall(cp, false)
		case tok.IsOperator("!"):
			p.b.StartNodeAt(cp, NodeNonNull)
			p.advance()
			p.finish(nil)
		default:
			return true
		}
	}
}

func (p *parseAST) parseAccessMember(cp Checkpoint, isSafe bool) {
	p.b.StartNodeAt(cp, NodeMember)
	p.advance()
	name := ""
	if tok := p.next(); IsIdentifierName(tok) {
		name = tok.StrValue
		p.advance()
	} else {
		p.error(msgNameExpected)
	}
	p.finish(&MemberData{Name: name, Safe: isSafe})
}

func (p *parseAST) parseKeyedRead(cp Checkpoint, isSafe bool) {
	p.b.StartNodeAt(cp, NodeIndex)
	if isSafe {
		p.advance()
	}
	p.advance()
	p.parseRequired(p.parsePipe)
	p.expectCharacter(core.CharRBRACKET, msgRBracketExpected)
	p.finish(&AccessData{Safe: isSafe})
}

func (p *parseAST) parseCall(cp Checkpoint, isSafe bool) {
	p.b.StartNodeAt(cp, NodeCall)
	if isSafe {
		p.advance()
	}
	p.parseCallArguments()
	p.finish(&AccessData{Safe: isSafe})
}

func (p *parseAST) parseCallArguments() {
	p.start(NodeArguments)
	p.advance()
	if !p.consumeOptionalCharacter(core.CharRPAREN) {
		for {
			if !p.parsePipe() {
				switch tok := p.next(); {
				case tok.IsCharacter(core.CharCOMMA), tok.IsCharacter(core.CharRPAREN):
					p.error(msgExpressionExpected)
					p.empty(NodeError)
				default:
					p.error(msgCommaOrRParenExpected)
					p.skipGroup(core.CharLPAREN, core.CharRPAREN)
					p.finish(nil)
					return
				}
			}
			if p.consumeOptionalCharacter(core.CharCOMMA) {
				continue
			}
			if !p.consumeOptionalCharacter(core.CharRPAREN) {
				p.error(msgCommaOrRParenExpected)
				p.skipGroup(core.CharLPAREN, core.CharRPAREN)
			}
			break
		}
	}
	p.finish(nil)
}

// parsePrimary parses a primary expression
func (p *parseAST) parsePrimary() bool {
	tok := p.next()
	switch {
	case tok.IsStringPiece():
		p.parseStringParts()
	case tok.IsString():
		p.literal(LiteralString, tok.StrValue)
	case tok.IsNumber():
		p.literal(LiteralNumber, tok.NumValue)
	case tok.IsKeywordNamed("this"):
		p.start(NodeThis)
		p.advance()
		p.finish(nil)
	case isLiteralKeyword(tok):
		kind := literalKeywords[tok.StrValue]
		var value any
		if kind == LiteralBoolean {
			value = tok.StrValue == "true"
		}
		p.literal(kind, value)
	case isReferenceToken(tok):
		p.parseReference()
	case tok.IsCharacter(core.CharLPAREN):
		p.start(NodeParenthesized)
		p.advance()
		p.parseRequired(p.parsePipe)
		p.expectCharacter(core.CharRPAREN, msgRParenExpected)
		p.finish(nil)
	case tok.IsCharacter(core.CharLBRACKET):
		p.parseLiteralArray()
	case tok.IsCharacter(core.CharLBRACE):
		p.parseLiteralMap()
	default:
		return false
	}
	return true
}

func isLiteralKeyword(tok *Token) bool {
	_, ok := literalKeywords[tok.StrValue]
	return tok.IsKeyword() && ok
}

func (p *parseAST) literal(kind LiteralKind, value any) {
	p.start(NodeLiteral)
	p.advance()
	p.finish(&LiteralData{Kind: kind, Value: value})
}

func (p *parseAST) parseReference() {
	tok := p.next()
	p.start(NodeReference)
	p.advance()
	p.finish(&NameData{Name: tok.StrValue})
}

// parseStringParts parses a string literal interrupted by `&quot;`/`&apos;`
// entities into a single node whose value is the decoded string.
func (p *parseAST) parseStringParts() {
	p.start(NodeStringPartsLiteral)
	var value strings.Builder
	for first := true; p.next().IsStringPiece(); first = false {
		tok := p.next()
		p.advance()
		if tok.StringKind == StringTokenKindEnd {
			if tok.IsString() {
				value.WriteString(tok.StrValue)
			}
			break
		}
		if tok.IsString() || !first {
			value.WriteString(tok.StrValue)
		}
	}
	p.finish(&LiteralData{Kind: LiteralString, Value: value.String()})
}

func (p *parseAST) parseLiteralArray() {
	p.start(NodeArrayLiteral)
	p.advance()
	for !p.atEOF() && !p.next().IsCharacter(core.CharRBRACKET) {
		if !p.parsePipe() && !p.next().IsCharacter(core.CharCOMMA) {
			break
		}
		if !p.consumeOptionalCharacter(core.CharCOMMA) {
			break
		}
	}
	p.expectCharacter(core.CharRBRACKET, msgRBracketExpected)
	p.finish(nil)
}

// parseLiteralMap parses an object literal
func (p *parseAST) parseLiteralMap() {
	p.start(NodeObjectLiteral)
	p.advance()
	for !p.atEOF() && !p.next().IsCharacter(core.CharRBRACE) {
		p.parseProperty()
		if !p.consumeOptionalCharacter(core.CharCOMMA) {
			break
		}
	}
	p.expectCharacter(core.CharRBRACE, msgRBraceExpected)
	p.finish(nil)
}

// parseProperty parses `key: value` or the `key` shorthand. Unlike
// ECMAScript, reserved words are accepted as keys; numbers are not.
func (p *parseAST) parseProperty() {
	key := p.next()
	p.start(NodeProperty)
	switch after := p.peek(1); {
	case IsIdentifierName(key) && (after.IsCharacter(core.CharCOMMA) || after.IsCharacter(core.CharRBRACE)):
		p.parseReference()
		p.finish(&NameData{Name: key.StrValue})
		return
	case IsIdentifierName(key) || (key.IsString() && key.StringKind == StringTokenKindPlain):
		p.advance()
	default:
		p.errorToken(msgIdentifierKeywordOrString)
		if !p.next().IsCharacter(core.CharCOLON) {
			p.finish(&NameData{})
			return
		}
	}
	if p.expectCharacter(core.CharCOLON, msgColonExpected) {
		p.parseRequired(p.parsePipe)
	}
	p.finish(&NameData{Name: key.StrValue})
}
