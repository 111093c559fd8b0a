package expression_parser

import "strings"

var keywords = map[string]bool{
	"as":        true,
	"if":        true,
	"let":       true,
	"var":       true,
	"else":      true,
	"null":      true,
	"this":      true,
	"true":      true,
	"false":     true,
	"typeof":    true,
	"void":      true,
	"undefined": true,
}

// IsKeyword reports whether text is lexed as a keyword.
func IsKeyword(text string) bool {
	return keywords[text]
}

// Keywords usable as plain references inside expressions.
var softKeywords = map[string]bool{
	"as":  true,
	"let": true,
}

var literalKeywords = map[string]LiteralKind{
	"true":      LiteralBoolean,
	"false":     LiteralBoolean,
	"null":      LiteralNull,
	"undefined": LiteralUndefined,
}

var prefixOperators = map[string]bool{
	"!": true,
	"-": true,
	"+": true,
}

var prefixKeywords = map[string]bool{
	"typeof": true,
	"void":   true,
}

// binaryLevels lists binary operators from the loosest to the tightest
// binding level. All levels but `**` are left-associative.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"??"},
	{"==", "!=", "===", "!=="},
	{"<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "/", "%"},
	{"**"},
}

// exponentLevel is the right-associative `**` level of binaryLevels.
const exponentLevel = 7

// IsIdentifierName reports whether tok can be used where an identifier name
// is expected: member names, pipe names, binding keys and property keys.
// Unlike ECMAScript, reserved words are accepted.
func IsIdentifierName(tok *Token) bool {
	return tok.Type == TokenTypeIdentifier || tok.Type == TokenTypeKeyword
}

// isReferenceToken reports whether tok may start a plain reference.
func isReferenceToken(tok *Token) bool {
	return tok.Type == TokenTypeIdentifier || (tok.Type == TokenTypeKeyword && softKeywords[tok.StrValue])
}

// BlockKind enumerates the control flow blocks with a parameter grammar.
type BlockKind int

const (
	BlockUnknown BlockKind = iota
	BlockIf
	BlockElseIf
	BlockSwitch
	BlockCase
	BlockFor
	BlockDefer
	BlockPlaceholder
	BlockLoading
	BlockLet
)

var blockNames = map[string]BlockKind{
	"if":          BlockIf,
	"else if":     BlockElseIf,
	"switch":      BlockSwitch,
	"case":        BlockCase,
	"for":         BlockFor,
	"defer":       BlockDefer,
	"placeholder": BlockPlaceholder,
	"loading":     BlockLoading,
	"let":         BlockLet,
}

// LookupBlockKind maps a block name ("else  if" is normalized) to its kind.
func LookupBlockKind(name string) BlockKind {
	return blockNames[strings.Join(strings.Fields(name), " ")]
}

func (b BlockKind) String() string {
	for name, kind := range blockNames {
		if kind == b {
			return name
		}
	}
	return "unknown"
}

// HasPrimaryExpression reports whether the first parameter of the block
// starts with an expression rather than a parameter name.
func (b BlockKind) HasPrimaryExpression() bool {
	switch b {
	case BlockIf, BlockElseIf, BlockSwitch, BlockCase, BlockFor, BlockLet:
		return true
	}
	return false
}

const (
	parameterPrefetch = "prefetch"
	parameterHydrate  = "hydrate"
	parameterWhen     = "when"
	parameterOn       = "on"
	parameterNever    = "never"
	parameterAs       = "as"
	parameterLet      = "let"
	parameterTrack    = "track"
)

var deferParameterNames = []string{parameterWhen, parameterOn, parameterPrefetch, parameterHydrate, parameterNever}

var forParameterNames = []string{parameterLet, parameterTrack}

// isParameterPrefix reports whether a parameter name is followed by a second
// parameter name (`prefetch on`, `hydrate when`).
func isParameterPrefix(name string) bool {
	return name == parameterPrefetch || name == parameterHydrate
}
