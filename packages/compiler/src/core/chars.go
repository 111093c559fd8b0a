package core

import "unicode"

// Character constants used by the expression and template scanners
const (
	CharEOF       rune = 0
	CharTAB       rune = '\t'
	CharLF        rune = '\n'
	CharVTAB      rune = '\v'
	CharFF        rune = '\f'
	CharCR        rune = '\r'
	CharSPACE     rune = ' '
	CharBANG      rune = '!'
	CharDQ        rune = '"'
	CharHASH      rune = '#'
	CharDollar    rune = '$'
	CharPERCENT   rune = '%'
	CharAMPERSAND rune = '&'
	CharSQ        rune = '\''
	CharLPAREN    rune = '('
	CharRPAREN    rune = ')'
	CharSTAR      rune = '*'
	CharPLUS      rune = '+'
	CharCOMMA     rune = ','
	CharMINUS     rune = '-'
	CharPERIOD    rune = '.'
	CharSLASH     rune = '/'
	CharCOLON     rune = ':'
	CharSEMICOLON rune = ';'
	CharLT        rune = '<'
	CharEQ        rune = '='
	CharGT        rune = '>'
	CharQUESTION  rune = '?'
	CharAT        rune = '@'

	Char0 rune = '0'
	Char9 rune = '9'

	CharA rune = 'A'
	CharE rune = 'E'
	CharF rune = 'F'
	CharX rune = 'X'
	CharZ rune = 'Z'

	CharLBRACKET   rune = '['
	CharBACKSLASH  rune = '\\'
	CharRBRACKET   rune = ']'
	CharCARET      rune = '^'
	CharUnderscore rune = '_'

	CharLowerA rune = 'a'
	CharLowerB rune = 'b'
	CharLowerE rune = 'e'
	CharLowerF rune = 'f'
	CharLowerN rune = 'n'
	CharLowerR rune = 'r'
	CharLowerT rune = 't'
	CharLowerU rune = 'u'
	CharLowerV rune = 'v'
	CharLowerX rune = 'x'
	CharLowerZ rune = 'z'

	CharLBRACE rune = '{'
	CharBAR    rune = '|'
	CharRBRACE rune = '}'
	CharNBSP   rune = '\u00a0'
)

// IsWhitespace reports whether r is an ASCII control/space character or a
// unicode space.
func IsWhitespace(r rune) bool {
	return (r >= CharTAB && r <= CharSPACE) || r == CharNBSP || (r > 0x7f && unicode.IsSpace(r))
}

func IsDigit(r rune) bool {
	return Char0 <= r && r <= Char9
}

func IsAsciiLetter(r rune) bool {
	return (r >= CharLowerA && r <= CharLowerZ) || (r >= CharA && r <= CharZ)
}

func IsAsciiHexDigit(r rune) bool {
	return (r >= CharLowerA && r <= CharLowerF) || (r >= CharA && r <= CharF) || IsDigit(r)
}

func IsNewLine(r rune) bool {
	return r == CharLF || r == CharCR
}

// IsQuote reports whether r opens a string literal in an expression.
func IsQuote(r rune) bool {
	return r == CharSQ || r == CharDQ
}

// IsIdentifierStart accepts ASCII letters, `_`, `$` and any non-ASCII letter.
func IsIdentifierStart(r rune) bool {
	return IsAsciiLetter(r) || r == CharUnderscore || r == CharDollar || (r > 0x7f && unicode.IsLetter(r))
}

func IsIdentifierPart(r rune) bool {
	return IsIdentifierStart(r) || IsDigit(r) || (r > 0x7f && unicode.IsDigit(r))
}

func IsExponentStart(r rune) bool {
	return r == CharLowerE || r == CharE
}

func IsExponentSign(r rune) bool {
	return r == CharMINUS || r == CharPLUS
}
