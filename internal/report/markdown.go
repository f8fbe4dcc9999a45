package report

import (
	"bytes"
	"html"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// narrativeMarkdown runs in goldmark's safe mode: raw HTML in the source is
// omitted and dangerous link targets are dropped.
var narrativeMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts the model's narrative into HTML.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := narrativeMarkdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + html.EscapeString(text) + "</p>\n")
	}
	return template.HTML(buf.String())
}
