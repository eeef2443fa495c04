package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts a title to a URL-safe slug: lowercase ASCII words
// joined by single hyphens. Accented letters fold to their base form
// and remaining non-ASCII characters are dropped, so slugs already
// stored for published articles keep resolving.
func Slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(asciiFold(input)))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// asciiFold NFKD-decomposes the input and keeps only the ASCII runes,
// turning "Café" into "Cafe" before the slug regexes run.
func asciiFold(input string) string {
	normalized := norm.NFKD.String(input)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}
