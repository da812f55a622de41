// Package render turns translated markdown into a styled PDF. Markdown is
// converted to HTML, wrapped with CSS built from the render directives,
// and printed through a headless Chromium.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"pdf-translator/internal/types"
)

// converter is shared; goldmark.Markdown is safe for concurrent use.
// Raw HTML must pass through unescaped because extracted tables arrive as
// embedded HTML.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// MarkdownToHTML converts markdown to an HTML body fragment.
func MarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", types.NewAppError(types.ErrRender, "markdown conversion failed", err)
	}
	return buf.String(), nil
}
