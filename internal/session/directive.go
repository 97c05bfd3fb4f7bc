package session

import (
	"regexp"
	"strings"
)

// Directive is one tool invocation parsed from assistant output, in the
// XML-style form:
//
//	<tool_name>
//	<param>value</param>
//	</tool_name>
type Directive struct {
	Name string
	Args map[string]string
	Raw  string
}

var openTag = regexp.MustCompile(`<([a-z][a-z0-9_]*)>`)

// ParseDirectives extracts directives for known tool names from assistant
// text. The parser is tolerant: unknown tags, unclosed blocks and anything
// else malformed is left alone as plain text rather than reported as an
// error.
func ParseDirectives(text string, known func(name string) bool) []Directive {
	var out []Directive
	idx := 0
	for idx < len(text) {
		loc := openTag.FindStringSubmatchIndex(text[idx:])
		if loc == nil {
			break
		}
		tagStart := idx + loc[0]
		bodyStart := idx + loc[1]
		name := text[idx+loc[2] : idx+loc[3]]

		if !known(name) {
			idx = bodyStart
			continue
		}
		closing := "</" + name + ">"
		rel := strings.Index(text[bodyStart:], closing)
		if rel < 0 {
			idx = bodyStart
			continue
		}
		bodyEnd := bodyStart + rel
		out = append(out, Directive{
			Name: name,
			Args: parseArgs(text[bodyStart:bodyEnd]),
			Raw:  text[tagStart : bodyEnd+len(closing)],
		})
		idx = bodyEnd + len(closing)
	}
	return out
}

// parseArgs reads the flat key-value parameter tags inside a directive
// body. Unknown or repeated keys simply overwrite; unclosed tags are
// skipped.
func parseArgs(body string) map[string]string {
	args := make(map[string]string)
	idx := 0
	for idx < len(body) {
		loc := openTag.FindStringSubmatchIndex(body[idx:])
		if loc == nil {
			break
		}
		valStart := idx + loc[1]
		key := body[idx+loc[2] : idx+loc[3]]

		closing := "</" + key + ">"
		rel := strings.Index(body[valStart:], closing)
		if rel < 0 {
			idx = valStart
			continue
		}
		args[key] = strings.TrimSpace(body[valStart : valStart+rel])
		idx = valStart + rel + len(closing)
	}
	return args
}
