package post

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// DefaultExcerptLength is used when no positive maximum is configured.
const DefaultExcerptLength = 180

const ellipsis = "…"

var (
	// contentKeys are tried in priority order.
	contentKeys = []string{"excerpt", "summary", "content", "body"}

	markupRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Excerpt builds a plain text summary of at most max runes from the first
// non-empty content field of rec. There is no title fallback: a record without
// content yields "".
func Excerpt(rec gjson.Result, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}
	for _, key := range contentKeys {
		raw := rec.Get(key).String()
		if raw == "" {
			continue
		}
		return Truncate(CleanText(raw), max)
	}
	return ""
}

// CleanText replaces markup tags with a space and collapses whitespace.
func CleanText(s string) string {
	s = markupRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate cuts s so that the result, ellipsis included, fits in max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := strings.TrimRightFunc(string(runes[:max-1]), unicode.IsSpace)
	return cut + ellipsis
}
