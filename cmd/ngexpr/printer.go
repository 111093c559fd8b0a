package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ngexpr-go/packages/compiler/src/util"
)

type printer struct {
	w      io.Writer
	errorC *color.Color
	warnC  *color.Color
	pathC  *color.Color
	caretC *color.Color
	okC    *color.Color
}

func newPrinter(w io.Writer, enabled bool) *printer {
	p := &printer{
		w:      w,
		errorC: color.New(color.FgRed, color.Bold),
		warnC:  color.New(color.FgYellow, color.Bold),
		pathC:  color.New(color.Bold),
		caretC: color.New(color.FgGreen),
		okC:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.errorC, p.warnC, p.pathC, p.caretC, p.okC} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// diagnostic prints err as `file:line:col: level: message` followed by the
// offending source line and a caret.
func (p *printer) diagnostic(err *util.ParseError) {
	if err.Span == nil || err.Span.Start == nil {
		p.level(err.Level)
		fmt.Fprintf(p.w, " %s\n", err.Msg)
		return
	}
	start := err.Span.Start
	p.pathC.Fprintf(p.w, "%s:%d:%d:", start.File.URL, start.Line+1, start.Col+1)
	fmt.Fprint(p.w, " ")
	p.level(err.Level)
	fmt.Fprintf(p.w, " %s\n", err.Msg)

	line := sourceLine(start.File.Content, start.Offset)
	fmt.Fprintf(p.w, "  %s\n", line)
	fmt.Fprintf(p.w, "  %s", strings.Repeat(" ", start.Col))
	width := 1
	if err.Span.End != nil && err.Span.End.Line == start.Line && err.Span.End.Col > start.Col {
		width = err.Span.End.Col - start.Col
	}
	p.caretC.Fprintln(p.w, "^"+strings.Repeat("~", width-1))
}

func (p *printer) level(level util.ParseErrorLevel) {
	if level == util.ParseErrorLevelWarning {
		p.warnC.Fprint(p.w, "warning:")
	} else {
		p.errorC.Fprint(p.w, "error:")
	}
}

func (p *printer) summary(files, bindings, errors int) {
	c := p.okC
	if errors > 0 {
		c = p.errorC
	}
	c.Fprintf(p.w, "%d %s, %d %s, %d %s\n",
		files, plural(files, "file"),
		bindings, plural(bindings, "binding"),
		errors, plural(errors, "error"))
}

func sourceLine(content string, offset int) string {
	start := strings.LastIndexByte(content[:offset], '\n') + 1
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		return strings.TrimRight(content[start:], "\r")
	}
	return strings.TrimRight(content[start:offset+end], "\r")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
