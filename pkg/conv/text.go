package conv

import (
	"strings"

	"github.com/inbucket/html2text"
)

// HTMLToText flattens markup in vendor content. Input without tags is
// returned trimmed.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(text)
}
