package template_parser

import (
	"strings"
	"unicode/utf8"

	"ngexpr-go/packages/compiler/src/core"
	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/util"
)

var INTERPOLATION = struct {
	start string
	end   string
}{
	start: "{{",
	end:   "}}",
}

// SUPPORTED_BLOCKS are the block names recognized after `@`. `else` covers
// `else if` as well.
var SUPPORTED_BLOCKS = map[string]bool{
	"if":          true,
	"else":        true,
	"else if":     true,
	"for":         true,
	"switch":      true,
	"case":        true,
	"default":     true,
	"empty":       true,
	"defer":       true,
	"placeholder": true,
	"loading":     true,
	"error":       true,
}

// elements whose content is never scanned for bindings
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

// Scanner finds the expression sites of an Angular template. It knows just
// enough HTML to tell text, tags and attributes apart; comments, CDATA and
// raw text elements are skipped.
type Scanner struct {
	file   *util.ParseSourceFile
	input  string
	pos    int
	sites  []*BindingSite
	errors []*util.ParseError
}

// ScanTemplate returns the sites of file in source order, plus errors for
// malformed blocks and @let declarations.
func ScanTemplate(file *util.ParseSourceFile) ([]*BindingSite, []*util.ParseError) {
	s := &Scanner{file: file, input: file.Content}
	s.scan()
	return s.sites, s.errors
}

func (s *Scanner) scan() {
	for !s.eof() {
		switch {
		case s.startsWith("<!--"):
			s.skipPast("-->")
		case s.startsWith("<![CDATA["):
			s.skipPast("]]>")
		case s.startsWith("</"):
			s.skipPast(">")
		case s.peek() == core.CharLT && core.IsAsciiLetter(s.peekAt(1)):
			s.consumeTag()
		case s.startsWith(INTERPOLATION.start):
			s.consumeTextInterpolation()
		case s.isLetStart():
			s.consumeLetDeclaration()
		case s.peek() == core.CharAT:
			if !s.consumeBlockStart() {
				s.advance()
			}
		default:
			s.advance()
		}
	}
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *Scanner) peek() rune {
	if s.eof() {
		return core.CharEOF
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])
	return r
}

// peekAt looks n bytes ahead; only used to match ASCII.
func (s *Scanner) peekAt(n int) rune {
	if s.pos+n >= len(s.input) {
		return core.CharEOF
	}
	return rune(s.input[s.pos+n])
}

func (s *Scanner) advance() {
	if s.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size
}

func (s *Scanner) startsWith(str string) bool {
	return strings.HasPrefix(s.input[s.pos:], str)
}

func (s *Scanner) skipPast(str string) {
	if i := strings.Index(s.input[s.pos:], str); i >= 0 {
		s.pos += i + len(str)
	} else {
		s.pos = len(s.input)
	}
}

func (s *Scanner) skipWhitespace() {
	for !s.eof() && core.IsWhitespace(s.peek()) {
		s.advance()
	}
}

func (s *Scanner) attemptCharCode(c rune) bool {
	if s.peek() == c && !s.eof() {
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) addSite(site *BindingSite) {
	s.sites = append(s.sites, site)
}

func (s *Scanner) reportError(message string, start, end int) {
	s.errors = append(s.errors, util.NewParseError(s.file.Span(start, end), message))
}

func (s *Scanner) consumeTextInterpolation() {
	start := s.pos + len(INTERPOLATION.start)
	end := interpolationEnd(s.input, start)
	if end < 0 {
		// an unterminated interpolation is plain text
		s.pos = start
		return
	}
	s.addSite(&BindingSite{
		Kind:   SiteInterpolation,
		Mode:   expression_parser.InterpolationMode(),
		Text:   s.input[start:end],
		Offset: start,
	})
	s.pos = end + len(INTERPOLATION.end)
}

func (s *Scanner) consumeTag() {
	s.pos++
	nameStart := s.pos
	for !s.eof() && !isNameEnd(s.peek()) {
		s.advance()
	}
	tagName := strings.ToLower(s.input[nameStart:s.pos])

	for {
		s.skipWhitespace()
		switch {
		case s.eof():
			return
		case s.attemptCharCode(core.CharGT):
			if rawTextElements[tagName] {
				s.skipRawText(tagName)
			}
			return
		case s.startsWith("/>"):
			s.pos += 2
			return
		case s.peek() == core.CharSLASH:
			s.advance()
		default:
			s.consumeAttr()
		}
	}
}

func (s *Scanner) skipRawText(tagName string) {
	i := strings.Index(strings.ToLower(s.input[s.pos:]), "</"+tagName)
	if i < 0 {
		s.pos = len(s.input)
		return
	}
	s.pos += i
}

func (s *Scanner) consumeAttr() {
	nameStart := s.pos
	openBrackets := 0
	for !s.eof() {
		c := s.peek()
		if c == core.CharLBRACKET || c == core.CharLPAREN {
			openBrackets++
		} else if c == core.CharRBRACKET || c == core.CharRPAREN {
			openBrackets--
		}
		if openBrackets > 0 && core.IsNewLine(c) {
			break
		}
		if openBrackets <= 0 && (isNameEnd(c) || c == core.CharEQ) {
			break
		}
		s.advance()
	}
	if s.pos == nameStart {
		// a stray quote or `=`
		s.advance()
		return
	}
	name := s.input[nameStart:s.pos]

	s.skipWhitespace()
	if !s.attemptCharCode(core.CharEQ) {
		s.classifyAttribute(name, "", s.pos, false)
		return
	}
	s.skipWhitespace()
	value, valueStart := s.consumeAttributeValue()
	s.classifyAttribute(name, value, valueStart, true)
}

func (s *Scanner) consumeAttributeValue() (string, int) {
	if quote := s.peek(); quote == core.CharSQ || quote == core.CharDQ {
		s.advance()
		start := s.pos
		for !s.eof() && s.peek() != quote {
			s.advance()
		}
		value := s.input[start:s.pos]
		s.attemptCharCode(quote)
		return value, start
	}
	start := s.pos
	for !s.eof() && !core.IsWhitespace(s.peek()) && s.peek() != core.CharGT {
		s.advance()
	}
	return s.input[start:s.pos], start
}

// classifyAttribute turns a bound attribute into a site; plain attributes
// only yield their interpolations.
func (s *Scanner) classifyAttribute(name, value string, valueStart int, hasValue bool) {
	site := &BindingSite{Text: value, Offset: valueStart}
	bound := strings.TrimPrefix(name, "data-")
	switch {
	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]"):
		site.Kind, site.Name = SiteTwoWay, name[2:len(name)-2]
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		site.Kind, site.Name = SiteProperty, name[1:len(name)-1]
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		site.Kind, site.Name = SiteEvent, name[1:len(name)-1]
	case strings.HasPrefix(name, TEMPLATE_ATTR_PREFIX):
		site.Kind, site.Name = SiteTemplate, name[len(TEMPLATE_ATTR_PREFIX):]
	case strings.HasPrefix(bound, "bindon-"):
		site.Kind, site.Name = SiteTwoWay, bound[len("bindon-"):]
	case strings.HasPrefix(bound, "bind-"):
		site.Kind, site.Name = SiteProperty, bound[len("bind-"):]
	case strings.HasPrefix(bound, "on-"):
		site.Kind, site.Name = SiteEvent, bound[len("on-"):]
	default:
		if hasValue {
			s.consumeAttributeInterpolations(name, value, valueStart)
		}
		return
	}

	switch site.Kind {
	case SiteProperty, SiteTwoWay:
		site.Name, site.Type = propertyBindingType(site.Name)
		site.Mode = expression_parser.BindingMode()
	case SiteEvent:
		site.Name, site.Target = parseEventListenerName(site.Name)
		site.Mode = expression_parser.ActionMode()
	case SiteTemplate:
		site.Mode = expression_parser.TemplateBindingsMode(site.Name)
	}
	s.addSite(site)
}

func (s *Scanner) consumeAttributeInterpolations(name, value string, valueStart int) {
	for i := 0; ; {
		open := strings.Index(value[i:], INTERPOLATION.start)
		if open < 0 {
			return
		}
		start := i + open + len(INTERPOLATION.start)
		end := interpolationEnd(value, start)
		if end < 0 {
			return
		}
		s.addSite(&BindingSite{
			Kind:   SiteInterpolation,
			Name:   name,
			Mode:   expression_parser.InterpolationMode(),
			Text:   value[start:end],
			Offset: valueStart + start,
		})
		i = end + len(INTERPOLATION.end)
	}
}

func (s *Scanner) isLetStart() bool {
	return s.startsWith("@let") && core.IsWhitespace(s.peekAt(len("@let")))
}

func (s *Scanner) consumeLetDeclaration() {
	start := s.pos
	s.pos += len("@let")
	s.skipWhitespace()

	nameStart := s.pos
	for !s.eof() && core.IsIdentifierPart(s.peek()) {
		s.advance()
	}
	name := s.input[nameStart:s.pos]

	s.skipWhitespace()
	if name == "" || !s.attemptCharCode(core.CharEQ) {
		nameString := ""
		if name != "" {
			nameString = " \"" + name + "\""
		}
		s.reportError("Incomplete @let declaration"+nameString+". @let declarations must be written as `@let <name> = <value>;`", start, s.pos)
		return
	}

	var inQuote rune
	for !s.eof() {
		c := s.peek()
		if c == core.CharBACKSLASH {
			s.advance()
		} else if inQuote != 0 && c == inQuote {
			inQuote = 0
		} else if inQuote == 0 && core.IsQuote(c) {
			inQuote = c
		} else if inQuote == 0 && c == core.CharSEMICOLON {
			break
		}
		s.advance()
	}
	s.addSite(&BindingSite{
		Kind:   SiteLet,
		Name:   name,
		Mode:   expression_parser.BlockParameterMode("let", 0),
		Text:   s.input[nameStart:s.pos],
		Offset: nameStart,
	})
	if !s.attemptCharCode(core.CharSEMICOLON) {
		s.reportError("Unterminated @let declaration \""+name+"\". Declaration must be terminated with a semicolon.", start, s.pos)
	}
}

// consumeBlockStart scans `@name (params) {`. It reports false when the `@`
// does not start a known block.
func (s *Scanner) consumeBlockStart() bool {
	start := s.pos
	s.pos++
	blockName := s.getBlockName()
	if !SUPPORTED_BLOCKS[blockName] {
		s.pos = start
		return false
	}

	if s.attemptCharCode(core.CharLPAREN) {
		s.consumeBlockParameters(blockName)
		s.skipWhitespace()
		if !s.attemptCharCode(core.CharRPAREN) {
			s.reportIncompleteBlock(blockName, start)
			return true
		}
		s.skipWhitespace()
	}
	if !s.attemptCharCode(core.CharLBRACE) {
		s.reportIncompleteBlock(blockName, start)
	}
	return true
}

func (s *Scanner) reportIncompleteBlock(blockName string, start int) {
	s.reportError("Incomplete block \""+blockName+"\". If you meant to write the @ character, you should use the \"&#64;\" HTML entity instead.", start, s.pos)
}

// getBlockName reads names such as `else if`: spaces are allowed once a name
// character was seen.
func (s *Scanner) getBlockName() string {
	nameStart := s.pos
	spacesInNameAllowed := false
	for !s.eof() {
		c := s.peek()
		if core.IsWhitespace(c) {
			if !spacesInNameAllowed {
				break
			}
		} else if isBlockNameChar(c) {
			spacesInNameAllowed = true
		} else {
			break
		}
		s.advance()
	}
	return strings.Join(strings.Fields(s.input[nameStart:s.pos]), " ")
}

func (s *Scanner) consumeBlockParameters(blockName string) {
	s.skipBlockParameterSeparators()
	for index := 0; !s.eof() && s.peek() != core.CharRPAREN; index++ {
		start := s.pos
		var inQuote rune
		openParens := 0
		for !s.eof() && (s.peek() != core.CharSEMICOLON || inQuote != 0) {
			c := s.peek()
			if c == core.CharBACKSLASH {
				s.advance()
			} else if inQuote != 0 && c == inQuote {
				inQuote = 0
			} else if inQuote == 0 && core.IsQuote(c) {
				inQuote = c
			} else if inQuote == 0 && c == core.CharLPAREN {
				openParens++
			} else if inQuote == 0 && c == core.CharRPAREN {
				if openParens == 0 {
					break
				}
				openParens--
			}
			s.advance()
		}
		s.addSite(&BindingSite{
			Kind:   SiteBlockParameter,
			Name:   blockName,
			Mode:   expression_parser.BlockParameterMode(blockName, index),
			Text:   s.input[start:s.pos],
			Offset: start,
		})
		s.attemptCharCode(core.CharSEMICOLON)
		s.skipBlockParameterSeparators()
	}
}

func (s *Scanner) skipBlockParameterSeparators() {
	for !s.eof() && (s.peek() == core.CharSEMICOLON || core.IsWhitespace(s.peek())) {
		s.advance()
	}
}

// interpolationEnd finds the `}}` closing an interpolation whose expression
// starts at start, skipping quoted strings. After a `//` comment quotes are
// no longer tracked. It returns -1 when there is none.
func interpolationEnd(input string, start int) int {
	var inQuote rune
	inComment := false
	for i := start; i < len(input); i++ {
		c := rune(input[i])
		switch {
		case inQuote != 0:
			if c == core.CharBACKSLASH {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
		case strings.HasPrefix(input[i:], INTERPOLATION.end):
			return i
		case inComment:
		case strings.HasPrefix(input[i:], "//"):
			inComment = true
		case core.IsQuote(c):
			inQuote = c
		}
	}
	return -1
}

func isNameEnd(c rune) bool {
	return core.IsWhitespace(c) || c == core.CharGT || c == core.CharLT ||
		c == core.CharSLASH || c == core.CharSQ || c == core.CharDQ || c == core.CharEQ ||
		c == core.CharEOF
}

func isBlockNameChar(c rune) bool {
	return core.IsAsciiLetter(c) || core.IsDigit(c) || c == core.CharUnderscore
}
