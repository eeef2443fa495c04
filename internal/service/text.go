package service

import (
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const excerptLength = 200

var strictPolicy = bluemonday.StrictPolicy()

// StripTags removes all HTML markup from rich-text content, returning
// the readable text with entities resolved.
func StripTags(input string) string {
	return stdhtml.UnescapeString(strictPolicy.Sanitize(input))
}

// MakeExcerpt derives the stored article excerpt: the first 200
// characters of the tag-stripped content, with an ellipsis appended
// when the content is longer.
func MakeExcerpt(content string) string {
	plain := StripTags(content)
	runes := []rune(plain)
	if len(runes) > excerptLength {
		return string(runes[:excerptLength]) + "..."
	}
	return plain
}

// PlainBody is the plain-text fallback for an email body: stripped and
// trimmed.
func PlainBody(body string) string {
	return strings.TrimSpace(StripTags(body))
}
