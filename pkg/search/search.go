// Package search filters normalized feeds by free text and tags.
package search

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/soulink/soulink/pkg/post"
	"golang.org/x/text/cases"
)

// Query selects posts. A zero Query matches everything.
type Query struct {
	Text string
	Tags []string
}

// Empty reports whether the query would keep every post.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Text) == "" && len(q.Tags) == 0
}

// Filter returns the posts matching q in their original order. Free text must
// be a case-insensitive substring of the title, the excerpt or a tag; tags
// match when any post tag equals any selected tag ignoring case. When both
// are set a post has to satisfy both.
func Filter(posts []post.Post, q Query) []post.Post {
	if q.Empty() {
		return posts
	}

	fold := cases.Fold()
	text := fold.String(strings.TrimSpace(q.Text))
	wanted := lo.Map(q.Tags, func(t string, _ int) string { return fold.String(t) })

	return lo.Filter(posts, func(p post.Post, _ int) bool {
		if text != "" && !matchText(p, text, fold) {
			return false
		}
		if len(wanted) > 0 && !matchTags(p, wanted, fold) {
			return false
		}
		return true
	})
}

func matchText(p post.Post, text string, fold cases.Caser) bool {
	if strings.Contains(fold.String(p.Title), text) || strings.Contains(fold.String(p.Excerpt), text) {
		return true
	}
	return lo.SomeBy(p.Tags, func(tag string) bool {
		return strings.Contains(fold.String(tag), text)
	})
}

func matchTags(p post.Post, wanted []string, fold cases.Caser) bool {
	return lo.SomeBy(p.Tags, func(tag string) bool {
		return lo.Contains(wanted, fold.String(tag))
	})
}

// ParseTags reads a comma separated, possibly URL-encoded tag parameter such
// as the one in /tags/{tags}.
func ParseTags(param string) []string {
	var tags []string
	for _, raw := range strings.Split(param, ",") {
		tag, err := url.PathUnescape(raw)
		if err != nil {
			tag = raw
		}
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
