package notes

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// RenderHTML converts a note's Markdown content to sanitized HTML.
// Sanitization runs after rendering so raw HTML embedded in the Markdown
// cannot carry scripts through.
func RenderHTML(content string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(content))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	rendered := markdown.Render(doc, renderer)

	policy := bluemonday.UGCPolicy()
	return string(policy.SanitizeBytes(rendered))
}
