package expression_parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"ngexpr-go/packages/compiler/src/core"
)

// ImplicitName is the context value a `let x` variable binds to when no
// `= key` is given.
const ImplicitName = "$implicit"

// parseTemplateBindings parses the microsyntax of a structural directive:
//
//	('as' var | expr ('as' var)?) [;,]?
//	( 'let' var ':'? ('=' key)?
//	| key ':'? 'as' var
//	| key ':'? expr ('as' var)?
//	) [;,]? ...
//
// The first binding is keyed by the directive itself.
func (p *parseAST) parseTemplateBindings(templateKey string) {
	first := true
	for {
		p.start(NodeTemplateBinding)
		isVar, isLet := false, true
		var key, rawKey string
		if first {
			key, rawKey = templateKey, templateKey
		} else {
			isVar = p.next().IsKeywordLet()
			if isVar {
				p.advance()
			}
			rawKey = p.expectTemplateBindingKey(isVar)
			key = rawKey
			if !isVar {
				key = TemplateBindingInputName(rawKey, templateKey)
			}
			p.consumeOptionalCharacter(core.CharCOLON)
		}

		name := ""
		switch {
		case isVar:
			name = ImplicitName
			if p.consumeOptionalOperator("=") {
				name = p.expectTemplateBindingKey(false)
			}
		case p.next().IsKeywordAs():
			p.advance()
			name = rawKey
			key = p.expectTemplateBindingKey(true)
			isVar, isLet = true, false
		case p.next().IsKeywordLet():
			// the binding has no value: `*ngFor="let item ..."`
		case !p.parsePipe():
			// a directive used without a value is fine
			if !first || !p.atEOF() {
				p.error(msgExpressionExpected)
			}
		}

		keyKind := KeyKindBinding
		if isVar && isLet {
			keyKind = KeyKindLet
		} else if isVar {
			keyKind = KeyKindAs
		}
		p.finish(&TemplateBindingData{Key: key, KeyKind: keyKind, Name: name})

		if !isVar && p.next().IsKeywordAs() {
			p.start(NodeTemplateBinding)
			p.advance()
			local := p.expectTemplateBindingKey(true)
			p.finish(&TemplateBindingData{Key: local, KeyKind: KeyKindAs, Name: key})
		}
		if p.next().IsCharacter(core.CharSEMICOLON) || p.next().IsCharacter(core.CharCOMMA) {
			p.advance()
		}
		first = false
		if p.atEOF() {
			return
		}
	}
}

// expectTemplateBindingKey reads a binding key. Identifiers joined by `-`
// without spaces form one key (`track-by`).
func (p *parseAST) expectTemplateBindingKey(isVariable bool) string {
	cp := p.checkpoint()
	var result strings.Builder
	for {
		tok := p.next()
		if !IsIdentifierName(tok) {
			if result.Len() > 0 {
				p.finishTemplateBindingKey(cp, isVariable, result.String())
			}
			if p.atEOF() {
				p.error(msgIdentifierOrKeyword)
			} else {
				p.errorToken(msgIdentifierOrKeyword)
			}
			return result.String()
		}
		result.WriteString(tok.StrValue)
		joined := p.rawAfterNext().IsOperator("-")
		p.advance()
		if !joined {
			break
		}
		result.WriteString("-")
		p.advance()
	}
	p.finishTemplateBindingKey(cp, isVariable, result.String())
	return result.String()
}

func (p *parseAST) finishTemplateBindingKey(cp Checkpoint, isVariable bool, name string) {
	if isVariable {
		p.wrap(cp, NodeTemplateVariable, &NameData{Name: name})
		p.wrap(cp, NodeVarStatement, nil)
		return
	}
	p.wrap(cp, NodeTemplateBindingKey, &NameData{Name: name})
}

// TemplateBindingInputName maps a binding key to the directive input it
// sets: `of` under `ngFor` is `ngForOf`, `track-by` is `ngForTrackBy`.
func TemplateBindingInputName(rawKey, templateKey string) string {
	if rawKey == "" {
		return templateKey
	}
	if strings.Contains(rawKey, "-") {
		return templateKey + strcase.ToCamel(rawKey)
	}
	r, size := utf8.DecodeRuneInString(rawKey)
	return templateKey + string(unicode.ToUpper(r)) + rawKey[size:]
}
