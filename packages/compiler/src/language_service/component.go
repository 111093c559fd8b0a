package language_service

import (
	"regexp"
	"strings"
)

var (
	componentRe = regexp.MustCompile(`@Component\s*\(\s*\{`)
	templateRe  = regexp.MustCompile("template\\s*:\\s*`([^`]*)`")
)

// InlineTemplate is the body of a `template:` literal inside a TypeScript
// source, as a byte range of that source.
type InlineTemplate struct {
	Start int
	End   int
}

// InlineTemplates finds the inline template of every @Component decorator
// in source. Components using templateUrl have none.
func InlineTemplates(source string) []InlineTemplate {
	var templates []InlineTemplate
	for _, loc := range componentRe.FindAllStringIndex(source, -1) {
		body := source[loc[1]:]
		// stop at the next decorator so a component never borrows a template
		if next := componentRe.FindStringIndex(body); next != nil {
			body = body[:next[0]]
		}
		m := templateRe.FindStringSubmatchIndex(body)
		if m == nil {
			continue
		}
		templates = append(templates, InlineTemplate{Start: loc[1] + m[2], End: loc[1] + m[3]})
	}
	return templates
}

// maskTemplates blanks everything outside templates, keeping newlines, so
// that offsets into the result are offsets into source.
func maskTemplates(source string, templates []InlineTemplate) string {
	var b strings.Builder
	b.Grow(len(source))
	pos := 0
	blank := func(s string) {
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	for _, t := range templates {
		blank(source[pos:t.Start])
		b.WriteString(source[t.Start:t.End])
		pos = t.End
	}
	blank(source[pos:])
	return b.String()
}
