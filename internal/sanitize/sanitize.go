// Package sanitize enforces the HTML allow-list applied to every post body
// before it is persisted, and produces the markup-free excerpts used in
// list views.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// ExcerptLimit is the maximum number of characters an excerpt keeps
// before the truncation marker is appended.
const ExcerptLimit = 200

const truncationMarker = "..."

var (
	postPolicy  = newPostPolicy()
	stripPolicy = bluemonday.StrictPolicy()
)

func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "b", "i", "u", "s", "p", "ul", "ol", "li", "blockquote", "a", "img")
	p.AllowAttrs("href", "name", "target").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("class").OnElements("li")
	p.AllowURLSchemes("data", "http", "https")
	return p
}

// PostBody filters HTML against the post body allow-list. Disallowed
// elements (script and friends) are removed, allowed formatting is kept.
func PostBody(html string) string {
	return postPolicy.Sanitize(html)
}

// Excerpt strips all markup from a post body and shortens the remaining
// text for list views.
func Excerpt(html string) string {
	text := []rune(stripPolicy.Sanitize(html))
	if len(text) < ExcerptLimit {
		return string(text)
	}
	return string(text[:ExcerptLimit]) + truncationMarker
}
