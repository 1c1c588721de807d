package render

import (
	"html/template"
	"strings"
)

const (
	diagramOpen  = "[DIAGRAM]"
	diagramClose = "[/DIAGRAM]"
)

// ExpandDiagrams turns a question prompt into display HTML. Every
// [DIAGRAM]body[/DIAGRAM] directive becomes a diagram block whose payload is
// body trimmed of leading and trailing whitespace; the diagram-rendering
// engine picks the block up after it is inserted into the visible tree.
// Prompts without the directive pass through (escaped) unmodified. An open
// marker without a matching close is treated as plain text.
func ExpandDiagrams(prompt string) template.HTML {
	var b strings.Builder
	rest := prompt
	for {
		start := strings.Index(rest, diagramOpen)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(diagramOpen):], diagramClose)
		if end < 0 {
			break
		}
		body := rest[start+len(diagramOpen) : start+len(diagramOpen)+end]
		b.WriteString(template.HTMLEscapeString(rest[:start]))
		b.WriteString(`<div class="diagram"><pre class="mermaid">`)
		b.WriteString(template.HTMLEscapeString(strings.TrimSpace(body)))
		b.WriteString(`</pre></div>`)
		rest = rest[start+len(diagramOpen)+end+len(diagramClose):]
	}
	b.WriteString(template.HTMLEscapeString(rest))
	return template.HTML(b.String())
}
