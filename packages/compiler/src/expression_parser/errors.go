package expression_parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingContext is returned when a mode that needs a template key or
	// block name is used without one. It signals a caller bug, not bad input.
	ErrMissingContext = errors.New("missing parse context")

	ErrUnknownMode = errors.New("unknown parse mode")
)

// Diagnostic messages.
const (
	msgExpressionExpected        = "Expression expected"
	msgNameExpected              = "Name expected"
	msgIdentifierExpected        = "Identifier expected"
	msgIdentifierOrKeyword       = "Expected identifier or keyword"
	msgIdentifierKeywordOrString = "Expected identifier, keyword, or string"
	msgColonExpected             = ": expected"
	msgCommaOrRParenExpected     = ", or ) expected"
	msgRBracketExpected          = "] expected"
	msgRBraceExpected            = "} expected"
	msgRParenExpected            = ") expected"
	msgLParenExpected            = "( expected"
	msgEqualExpected             = "= expected"
	msgMissingRParen             = "Missing )"
	msgChainInBinding            = "Binding expression cannot contain chained expressions"
	msgAssignmentInBinding       = "Binding expression cannot contain assignments"
	msgPipeInHostBinding         = "Host binding expression cannot contain pipes"
	msgPipeInAction              = "Action expression cannot contain pipes"
	msgExpectedOf                = "Expected 'of'"
	msgExpectedComma             = "Expected ','"
	msgExpectedOnWhen            = "Expected 'on' or 'when'"
	msgExpectedOnWhenNever       = "Expected 'on', 'when' or 'never'"
	msgExpectedNumericLiteral    = "Expected numeric literal"
	msgUnexpectedWhitespace      = "Unexpected whitespace"
	msgBadDeferredTimeFormat     = "Invalid numeric format for deferred time"
)

func unexpectedToken(tok *Token) string {
	return fmt.Sprintf("Unexpected token '%s'", tok)
}

func unknownTimeUnit(unit string) string {
	msg := fmt.Sprintf("Unknown time unit '%s'", unit)
	if hint := Suggest(unit, timeUnits); hint != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", hint)
	}
	return msg
}

func unknownDeferParameter(name string) string {
	return unknownParameter("defer", name, deferParameterNames)
}

func unknownForParameter(name string) string {
	return unknownParameter("for", name, forParameterNames)
}

func unknownParameter(block, name string, candidates []string) string {
	msg := fmt.Sprintf("Unknown %s parameter '%s'", block, name)
	if hint := Suggest(name, candidates); hint != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", hint)
	}
	return msg
}
