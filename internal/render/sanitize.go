package render

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// chroma markup
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("tabindex").OnElements("pre")
		policy.AllowStyles("white-space", "word-break", "overflow-wrap").OnElements("pre", "code", "span")

		policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup")
		policy.AllowElements("u", "s", "sub", "sup", "mark")
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// Sanitize strips scripts, event handlers and unknown elements from
// rendered HTML while keeping highlighting classes.
func Sanitize(html []byte) []byte {
	if len(html) == 0 {
		return html
	}
	return getPolicy().SanitizeBytes(html)
}

func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize([]byte(html)))
}
