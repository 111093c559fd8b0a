package util

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ParseSourceFile is a named piece of source text. Line starts are computed
// lazily so that offsets can be converted to line/column pairs.
type ParseSourceFile struct {
	Content string
	URL     string

	lineStarts []int
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

func (f *ParseSourceFile) lines() []int {
	if f.lineStarts == nil {
		f.lineStarts = []int{0}
		for i := 0; i < len(f.Content); i++ {
			if f.Content[i] == '\n' {
				f.lineStarts = append(f.lineStarts, i+1)
			}
		}
	}
	return f.lineStarts
}

// Location converts a byte offset into a ParseLocation. Line and column are
// zero based; the column counts runes, not bytes.
func (f *ParseSourceFile) Location(offset int) *ParseLocation {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	starts := f.lines()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	col := utf8.RuneCountInString(f.Content[starts[line]:offset])
	return &ParseLocation{File: f, Offset: offset, Line: line, Col: col}
}

// Offset is the inverse of Location. Out of range lines clamp to the file.
func (f *ParseSourceFile) Offset(line, col int) int {
	starts := f.lines()
	if line < 0 {
		return 0
	}
	if line >= len(starts) {
		return len(f.Content)
	}
	offset := starts[line]
	for col > 0 && offset < len(f.Content) && f.Content[offset] != '\n' {
		_, size := utf8.DecodeRuneInString(f.Content[offset:])
		offset += size
		col--
	}
	return offset
}

// Span builds a ParseSourceSpan for the byte range [start, end).
func (f *ParseSourceFile) Span(start, end int) *ParseSourceSpan {
	return NewParseSourceSpan(f.Location(start), f.Location(end))
}

// ParseLocation represents a location in the source file
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// String renders the location as url@line:col with one based numbers.
func (p *ParseLocation) String() string {
	return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line+1, p.Col+1)
}

// GetContext returns up to maxChars characters (and at most maxLines lines)
// on each side of the location.
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	content := p.File.Content
	if len(content) == 0 {
		return &Context{}
	}

	startOffset := p.Offset
	ctxChars, ctxLines := 0, 0
	for ctxChars < maxChars && startOffset > 0 {
		startOffset--
		ctxChars++
		if content[startOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				startOffset++
				break
			}
		}
	}

	endOffset := p.Offset
	ctxChars, ctxLines = 0, 0
	for ctxChars < maxChars && endOffset < len(content) {
		if content[endOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
		endOffset++
		ctxChars++
	}

	return &Context{
		Before: content[startOffset:p.Offset],
		After:  content[p.Offset:endOffset],
	}
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start *ParseLocation
	End   *ParseLocation
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation) *ParseSourceSpan {
	return &ParseSourceSpan{Start: start, End: end}
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// ParseErrorLevel represents the level of a parse error
type ParseErrorLevel int

const (
	ParseErrorLevelWarning ParseErrorLevel = iota
	ParseErrorLevelError
)

func (l ParseErrorLevel) String() string {
	if l == ParseErrorLevelWarning {
		return "WARNING"
	}
	return "ERROR"
}

// ParseError is a positioned message ready for display.
type ParseError struct {
	Span  *ParseSourceSpan
	Msg   string
	Level ParseErrorLevel
}

// NewParseError creates a new ParseError
func NewParseError(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelError,
	}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	return p.String()
}

// ContextualMessage returns the error message with the surrounding source,
// the position marked with [ERROR ->].
func (p *ParseError) ContextualMessage() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	ctx := p.Span.Start.GetContext(100, 3)
	before := strings.ReplaceAll(ctx.Before, "\n", "\\n")
	after := strings.ReplaceAll(ctx.After, "\n", "\\n")
	return fmt.Sprintf(`%s ("%s[%s ->]%s")`, p.Msg, before, p.Level, after)
}

// String returns a string representation of the error
func (p *ParseError) String() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	return fmt.Sprintf("%s: %s", p.ContextualMessage(), p.Span.Start)
}
