// internal/render/markdown.go

// Package render produces the display markup for classification results and
// assistant replies. Rendering targets are injected so the same controllers
// drive a browser region, a terminal, or a test buffer.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown converts assistant-authored Markdown into display markup. User
// text never goes through this path; it is always escaped verbatim.
type Markdown interface {
	Render(source string) string
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewMarkdown returns a GFM-capable Markdown renderer.
func NewMarkdown() Markdown {
	return &goldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

func (g *goldmarkRenderer) Render(source string) string {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(source), &buf); err != nil {
		// Fall back to the raw text when conversion fails.
		return source
	}
	return buf.String()
}
