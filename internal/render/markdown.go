// Package render converts proof bodies from markdown to HTML.
package render

import (
	"gitlab.com/golang-commonmark/markdown"
)

// Markdown renders CommonMark to HTML. Raw HTML in the source is escaped.
type Markdown struct {
	md *markdown.Markdown
}

// NewMarkdown creates a renderer with linkify and typographic replacements
// enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: markdown.New(
			markdown.HTML(false),
			markdown.Linkify(true),
			markdown.Typographer(true),
			markdown.XHTMLOutput(false),
		),
	}
}

// Render implements models.Renderer.
func (m *Markdown) Render(src string) string {
	return m.md.RenderToString([]byte(src))
}
