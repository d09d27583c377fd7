package report

import (
	"bytes"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"simlab/domain/run"
)

// HTMLRenderer converts the markdown report into a standalone HTML page
type HTMLRenderer struct {
	md *MarkdownRenderer
}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: NewMarkdownRenderer()}
}

// Render writes a complete HTML document
func (h *HTMLRenderer) Render(w io.Writer, r *run.Report) error {
	var buf bytes.Buffer
	if err := h.md.Render(&buf, r); err != nil {
		return err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: h.md.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	_, err := w.Write(markdown.ToHTML(buf.Bytes(), p, renderer))
	return err
}
