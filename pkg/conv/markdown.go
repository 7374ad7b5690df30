// Package conv converts between markdown, HTML and plain text.
package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions  = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags   = html.CommonFlags | html.HrefTargetBlank
	replyPolicy = bluemonday.NewPolicy()
)

func init() {
	// inline formatting only; block structure is flattened to text
	replyPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	replyPolicy.AllowAttrs("href").OnElements("a")
	replyPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToHTML renders agent replies as sanitized HTML.
func MarkdownToHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(replyPolicy.SanitizeBytes(unsafeHTML))
}
