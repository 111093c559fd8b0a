package expression_parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ngexpr-go/packages/compiler/src/core"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeEntity
	TokenTypeBlockParameterName
	TokenTypeWhitespace
	TokenTypeComment
	TokenTypeError
)

var tokenTypeNames = [...]string{
	TokenTypeCharacter:          "Character",
	TokenTypeIdentifier:         "Identifier",
	TokenTypeKeyword:            "Keyword",
	TokenTypeString:             "String",
	TokenTypeOperator:           "Operator",
	TokenTypeNumber:             "Number",
	TokenTypeEntity:             "Entity",
	TokenTypeBlockParameterName: "BlockParameterName",
	TokenTypeWhitespace:         "Whitespace",
	TokenTypeComment:            "Comment",
	TokenTypeError:              "Error",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// StringTokenKind tells apart a complete string token from the pieces of a
// string interrupted by `&quot;`/`&apos;` entities.
type StringTokenKind int

const (
	StringTokenKindPlain StringTokenKind = iota
	// StringTokenKindPart is a piece of a string that continues in the next token
	StringTokenKindPart
	// StringTokenKindEnd is the piece that closes the string
	StringTokenKindEnd
)

const (
	entityQuot = "&quot;"
	entityApos = "&apos;"
)

// Token represents a token in the expression. Tokens are never mutated
// after Tokenize returns.
type Token struct {
	Index int
	End   int
	Type  TokenType
	// Raw is the exact source text of the token
	Raw string
	// StrValue is the decoded value: identifier/keyword/operator text,
	// unescaped string content, or the quote an entity stands for
	StrValue string
	NumValue float64
	// StringKind is only meaningful for String and Entity tokens
	StringKind StringTokenKind
	// Err carries a lexical problem found while scanning this token
	Err string
}

// EOF is returned by the parser cursor past the last token.
var EOF = &Token{Index: -1, End: -1, Type: TokenTypeCharacter}

// IsCharacter checks if the token is the punctuation character r
func (t *Token) IsCharacter(r rune) bool {
	return t.Type == TokenTypeCharacter && t != EOF && t.StrValue == string(r)
}

// IsOperator checks if the token is an operator with the given value
func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

func (t *Token) IsIdentifier() bool {
	return t.Type == TokenTypeIdentifier
}

func (t *Token) IsKeyword() bool {
	return t.Type == TokenTypeKeyword
}

// IsKeywordNamed checks for a specific keyword
func (t *Token) IsKeywordNamed(keyword string) bool {
	return t.Type == TokenTypeKeyword && t.StrValue == keyword
}

func (t *Token) IsKeywordLet() bool {
	return t.IsKeywordNamed("let")
}

func (t *Token) IsKeywordAs() bool {
	return t.IsKeywordNamed("as")
}

func (t *Token) IsNumber() bool {
	return t.Type == TokenTypeNumber
}

func (t *Token) IsString() bool {
	return t.Type == TokenTypeString
}

// IsEntity checks for a `&quot;` or `&apos;` entity token
func (t *Token) IsEntity() bool {
	return t.Type == TokenTypeEntity
}

// IsStringPiece reports whether the token belongs to a string literal split
// by entities.
func (t *Token) IsStringPiece() bool {
	return t.IsEntity() || (t.IsString() && t.StringKind != StringTokenKindPlain)
}

// IsBlockParameterName checks for a block parameter name with the given text
func (t *Token) IsBlockParameterName(name string) bool {
	return t.Type == TokenTypeBlockParameterName && t.StrValue == name
}

func (t *Token) IsError() bool {
	return t.Type == TokenTypeError
}

// IsTrivia reports whether the parser skips the token.
func (t *Token) IsTrivia() bool {
	return t.Type == TokenTypeWhitespace || t.Type == TokenTypeComment
}

// ToNumber converts the token to a number
func (t *Token) ToNumber() float64 {
	if t.Type == TokenTypeNumber {
		return t.NumValue
	}
	return -1
}

// Span returns the token position.
func (t *Token) Span() Span {
	return Span{Start: t.Index, End: t.End}
}

// String returns the source text of the token
func (t *Token) String() string {
	if t == EOF {
		return ""
	}
	return t.Raw
}

// Lexer tokenizes expressions
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize splits text into tokens, trivia included. The mode only matters
// for block parameters, whose leading identifier may become a
// BlockParameterName token.
func (l *Lexer) Tokenize(text string, mode Mode) []*Token {
	s := newScanner(text, mode.startsWithParameterName())
	return s.scan()
}

type scanner struct {
	input  string
	length int
	peek   rune
	index  int
	width  int
	tokens []*Token

	parameterName bool
}

func newScanner(input string, parameterName bool) *scanner {
	s := &scanner{
		input:         input,
		length:        len(input),
		tokens:        []*Token{},
		parameterName: parameterName,
	}
	s.decode()
	return s
}

func (s *scanner) decode() {
	if s.index >= s.length {
		s.peek, s.width = core.CharEOF, 0
		return
	}
	s.peek, s.width = utf8.DecodeRuneInString(s.input[s.index:])
}

func (s *scanner) advance() {
	s.index += s.width
	s.decode()
}

// peekAt returns the rune n runes after the current one.
func (s *scanner) peekAt(n int) rune {
	i := s.index
	for ; n > 0 && i < s.length; n-- {
		_, w := utf8.DecodeRuneInString(s.input[i:])
		i += w
	}
	if i >= s.length {
		return core.CharEOF
	}
	r, _ := utf8.DecodeRuneInString(s.input[i:])
	return r
}

func (s *scanner) scan() []*Token {
	for {
		token := s.scanToken()
		if token == nil {
			return s.tokens
		}
		if s.parameterName && !token.IsTrivia() {
			s.parameterName = false
			if token.IsIdentifier() || token.IsKeyword() {
				token.Type = TokenTypeBlockParameterName
				s.parameterName = isParameterPrefix(token.StrValue)
			}
		}
		s.tokens = append(s.tokens, token)
	}
}

func (s *scanner) scanToken() *Token {
	if s.index >= s.length {
		return nil
	}

	start := s.index
	peek := s.peek

	if core.IsWhitespace(peek) {
		for core.IsWhitespace(s.peek) {
			s.advance()
		}
		return s.newToken(start, TokenTypeWhitespace, s.input[start:s.index])
	}
	if core.IsIdentifierStart(peek) {
		return s.scanIdentifier()
	}
	if core.IsDigit(peek) {
		return s.scanNumber(start)
	}

	switch peek {
	case core.CharPERIOD:
		s.advance()
		if core.IsDigit(s.peek) {
			return s.scanNumber(start)
		}
		return s.newToken(start, TokenTypeCharacter, ".")
	case core.CharLPAREN, core.CharRPAREN, core.CharLBRACKET, core.CharRBRACKET,
		core.CharLBRACE, core.CharRBRACE, core.CharCOMMA, core.CharCOLON, core.CharSEMICOLON:
		s.advance()
		return s.newToken(start, TokenTypeCharacter, string(peek))
	case core.CharSQ, core.CharDQ:
		s.advance()
		return s.scanString(start, peek, false)
	case core.CharAMPERSAND:
		if quote, ok := s.entityQuote(); ok {
			s.skipEntity()
			return s.scanString(start, quote, true)
		}
		return s.scanComplexOperator(start, "&", core.CharAMPERSAND, "&")
	case core.CharSLASH:
		switch s.peekAt(1) {
		case core.CharSLASH:
			return s.scanLineComment(start)
		case core.CharSTAR:
			return s.scanBlockComment(start)
		}
		return s.scanOperator(start, "/")
	case core.CharSTAR:
		return s.scanComplexOperator(start, "*", core.CharSTAR, "*")
	case core.CharPLUS, core.CharMINUS, core.CharPERCENT, core.CharCARET, core.CharHASH:
		return s.scanOperator(start, string(peek))
	case core.CharQUESTION:
		return s.scanQuestion(start)
	case core.CharLT, core.CharGT:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "=")
	case core.CharBANG, core.CharEQ:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "=", core.CharEQ)
	case core.CharBAR:
		return s.scanComplexOperator(start, "|", core.CharBAR, "|")
	}

	s.advance()
	tok := s.newToken(start, TokenTypeError, string(peek))
	tok.Err = fmt.Sprintf("Unexpected character [%c]", peek)
	return tok
}

func (s *scanner) newToken(start int, typ TokenType, value string) *Token {
	return &Token{
		Index:    start,
		End:      s.index,
		Type:     typ,
		Raw:      s.input[start:s.index],
		StrValue: value,
	}
}

func (s *scanner) scanOperator(start int, str string) *Token {
	s.advance()
	return s.newToken(start, TokenTypeOperator, str)
}

func (s *scanner) scanComplexOperator(start int, one string, twoCode rune, two string, threeCode ...rune) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
		if len(threeCode) > 0 && s.peek == threeCode[0] {
			s.advance()
			str += string(threeCode[0])
		}
	}
	return s.newToken(start, TokenTypeOperator, str)
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	operator := "?"
	switch {
	case s.peek == core.CharQUESTION:
		operator += "?"
		s.advance()
	case s.peek == core.CharPERIOD && !core.IsDigit(s.peekAt(1)):
		// `a?.b`, but not `a?.5:1`
		operator += "."
		s.advance()
	}
	return s.newToken(start, TokenTypeOperator, operator)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for core.IsIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	if IsKeyword(str) {
		return s.newToken(start, TokenTypeKeyword, str)
	}
	return s.newToken(start, TokenTypeIdentifier, str)
}

func (s *scanner) scanNumber(start int) *Token {
	if s.index == start && s.peek == core.Char0 && (s.peekAt(1) == core.CharLowerX || s.peekAt(1) == core.CharX) {
		return s.scanHexNumber(start)
	}

	errMsg := ""
	seenDot := s.input[start] == '.'
	for {
		if core.IsDigit(s.peek) {
			// continue
		} else if s.peek == core.CharUnderscore {
			// Separators are only valid when they're surrounded by digits
			if !core.IsDigit(s.peekAt(1)) || s.index == start || !core.IsDigit(rune(s.input[s.index-1])) {
				errMsg = "Invalid numeric separator"
			}
		} else if s.peek == core.CharPERIOD && !seenDot {
			seenDot = true
		} else if core.IsExponentStart(s.peek) {
			s.advance()
			if core.IsExponentSign(s.peek) {
				s.advance()
			}
			if !core.IsDigit(s.peek) {
				errMsg = "Invalid exponent"
				break
			}
		} else {
			break
		}
		s.advance()
	}

	tok := s.newToken(start, TokenTypeNumber, s.input[start:s.index])
	value, err := strconv.ParseFloat(strings.ReplaceAll(tok.Raw, "_", ""), 64)
	if err == nil {
		tok.NumValue = value
	}
	tok.Err = errMsg
	return tok
}

func (s *scanner) scanHexNumber(start int) *Token {
	s.advance()
	s.advance()
	for core.IsAsciiHexDigit(s.peek) {
		s.advance()
	}
	tok := s.newToken(start, TokenTypeNumber, s.input[start:s.index])
	value, err := strconv.ParseUint(tok.Raw[2:], 16, 64)
	if err != nil {
		tok.Err = "Invalid hexadecimal number"
	} else {
		tok.NumValue = float64(value)
	}
	return tok
}

// entityQuote reports whether an `&quot;`/`&apos;` entity starts at the
// current position and which quote it stands for.
func (s *scanner) entityQuote() (rune, bool) {
	rest := s.input[s.index:]
	switch {
	case strings.HasPrefix(rest, entityQuot):
		return core.CharDQ, true
	case strings.HasPrefix(rest, entityApos):
		return core.CharSQ, true
	}
	return 0, false
}

func (s *scanner) skipEntity() {
	// both entities are six bytes long
	s.index += len(entityQuot)
	s.decode()
}

// scanString scans a string whose opening quote (a character or an entity)
// has already been consumed. Strings without entities become one token;
// otherwise the string is split into String parts and Entity tokens, and the
// closing token is marked StringTokenKindEnd. Only the tokens before the
// returned one are appended to s.tokens here.
func (s *scanner) scanString(start int, quote rune, openedByEntity bool) *Token {
	var pieces []*Token
	partStart := start
	if openedByEntity {
		open := s.newToken(start, TokenTypeEntity, string(quote))
		open.StringKind = StringTokenKindPart
		pieces = append(pieces, open)
		partStart = s.index
	}

	var buffer strings.Builder
	errMsg := ""
	closed := false
	for !closed {
		switch {
		case s.index >= s.length:
			errMsg = "Unterminated quote"
			closed = true
		case s.peek == quote:
			s.advance()
			closed = true
		case s.peek == core.CharBACKSLASH:
			if msg := s.scanStringBackslash(&buffer); msg != "" && errMsg == "" {
				errMsg = msg
			}
		case s.peek == core.CharAMPERSAND:
			entity, ok := s.entityQuote()
			if !ok {
				buffer.WriteRune(s.peek)
				s.advance()
				continue
			}
			if s.index > partStart {
				part := s.newToken(partStart, TokenTypeString, buffer.String())
				part.StringKind = StringTokenKindPart
				pieces = append(pieces, part)
				buffer.Reset()
			}
			entityStart := s.index
			s.skipEntity()
			ent := s.newToken(entityStart, TokenTypeEntity, string(entity))
			ent.StringKind = StringTokenKindPart
			pieces = append(pieces, ent)
			partStart = s.index
			if entity == quote {
				ent.StringKind = StringTokenKindEnd
				ent.Err = errMsg
				s.tokens = append(s.tokens, pieces[:len(pieces)-1]...)
				return ent
			}
		default:
			buffer.WriteRune(s.peek)
			s.advance()
		}
	}

	if len(pieces) == 0 {
		tok := s.newToken(start, TokenTypeString, buffer.String())
		tok.Err = errMsg
		return tok
	}

	var last *Token
	if s.index > partStart {
		last = s.newToken(partStart, TokenTypeString, buffer.String())
	} else {
		last = pieces[len(pieces)-1]
		pieces = pieces[:len(pieces)-1]
	}
	last.StringKind = StringTokenKindEnd
	last.Err = errMsg
	s.tokens = append(s.tokens, pieces...)
	return last
}

// scanStringBackslash decodes one escape sequence into buffer and returns an
// error message for malformed ones.
func (s *scanner) scanStringBackslash(buffer *strings.Builder) string {
	s.advance()
	if s.index >= s.length {
		return "Unterminated quote"
	}
	if s.peek == core.CharLowerU {
		end := s.index + 5
		if end > s.length {
			end = s.length
		}
		hex := s.input[s.index+1 : end]
		val, err := strconv.ParseUint(hex, 16, 32)
		if len(hex) != 4 || err != nil {
			s.advance()
			return fmt.Sprintf("Invalid unicode escape [\\u%s]", hex)
		}
		buffer.WriteRune(rune(val))
		for i := 0; i < 5; i++ {
			s.advance()
		}
		return ""
	}
	buffer.WriteRune(unescape(s.peek))
	s.advance()
	return ""
}

func (s *scanner) scanLineComment(start int) *Token {
	s.index = s.length
	s.decode()
	return s.newToken(start, TokenTypeComment, s.input[start:s.index])
}

func (s *scanner) scanBlockComment(start int) *Token {
	end := strings.Index(s.input[start+2:], "*/")
	if end < 0 {
		s.index = s.length
		s.decode()
		tok := s.newToken(start, TokenTypeComment, s.input[start:s.index])
		tok.Err = "Unterminated comment"
		return tok
	}
	s.index = start + 2 + end + 2
	s.decode()
	return s.newToken(start, TokenTypeComment, s.input[start:s.index])
}

func unescape(code rune) rune {
	switch code {
	case core.CharLowerN:
		return core.CharLF
	case core.CharLowerF:
		return core.CharFF
	case core.CharLowerR:
		return core.CharCR
	case core.CharLowerT:
		return core.CharTAB
	case core.CharLowerV:
		return core.CharVTAB
	case core.CharLowerB:
		return '\b'
	case core.Char0:
		return 0
	default:
		return code
	}
}
