package server

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts article markup to HTML for the web preview.
// Inline HTML passes through, so revision highlight spans survive.
func renderMarkdown(text string) template.HTML {
	if text == "" {
		return template.HTML("")
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: htmlFlags,
	})

	htmlBytes := markdown.ToHTML([]byte(text), mdParser, renderer)
	return template.HTML(htmlBytes)
}
