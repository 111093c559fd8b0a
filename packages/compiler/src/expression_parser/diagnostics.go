package expression_parser

import (
	"fmt"

	"ngexpr-go/packages/compiler/src/util"
)

type Severity int

const (
	SeverityError Severity = iota
)

func (s Severity) String() string {
	return "error"
}

// Diagnostic is a non-fatal parse problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Severity, d.Span, d.Message)
}

// ParseError converts the diagnostic into a located error against file.
// offset is where the expression starts inside the file.
func (d Diagnostic) ParseError(file *util.ParseSourceFile, offset int) *util.ParseError {
	span := file.Span(offset+d.Span.Start, offset+d.Span.End)
	return util.NewParseError(span, d.Message)
}
