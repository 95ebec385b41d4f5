// Package markdown renders the rich-text bodies of posts and comments.
//
// Bodies are written in Markdown (GitHub flavoured). Raw HTML inside a body is
// not passed through, so a post cannot inject script into the page.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Render converts source to HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTML is Render for templates. goldmark's default renderer omits raw HTML
// and unsafe link schemes, which is what makes the template.HTML conversion
// sound. On a render error the escaped source is shown instead.
func HTML(source string) template.HTML {
	out, err := Render(source)
	if err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(source) + "</p>")
	}
	return template.HTML(out)
}
