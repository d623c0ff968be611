package post

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	authorKeys     = []string{"author", "author_name"}
	authorNameKeys = []string{"name", "username", "full_name", "display_name"}
	imageKeys      = []string{"cover_image", "image"}
	dateKeys       = []string{"published_at", "published_date", "publish", "created_at", "created", "meta.published", "meta.published_at"}
)

// Normalizer maps raw API records to Posts. The zero value is usable and
// falls back to DefaultExcerptLength and the default date formatter.
type Normalizer struct {
	ExcerptLength int
	Dates         *Formatter
}

// NewNormalizer returns a Normalizer with the given excerpt bound and dates.
func NewNormalizer(excerptLength int, dates *Formatter) *Normalizer {
	return &Normalizer{ExcerptLength: excerptLength, Dates: dates}
}

var defaultNormalizer = &Normalizer{}

// Normalize maps rec with the default settings.
func Normalize(rec gjson.Result) Post {
	return defaultNormalizer.Normalize(rec)
}

// Normalize never fails: every missing or malformed field degrades to its
// default.
func (n *Normalizer) Normalize(rec gjson.Result) Post {
	dates := n.Dates
	if dates == nil {
		dates = defaultFormatter
	}

	p := Post{
		ID:              rec.Get("id").String(),
		Title:           firstString(rec, "title"),
		AuthorName:      authorName(rec),
		Image:           firstString(rec, imageKeys...),
		Tags:            NormalizeTags(rec.Get("tags")),
		ReadTimeMinutes: readTime(rec.Get("read_time")),
		Excerpt:         Excerpt(rec, n.ExcerptLength),
		Slug:            firstString(rec, "slug"),
		URL:             firstString(rec, "url"),
		Status:          firstString(rec, "status"),
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.AuthorName == "" {
		p.AuthorName = DefaultAuthor
	}

	published := publishedValue(rec)
	p.PublishedLabel = dates.Format(published)
	if t, ok := dates.Parse(published); ok {
		p.PublishedAt = t
	}

	switch {
	case p.URL != "":
		p.NavigationTarget = p.URL
	case p.Slug != "":
		p.NavigationTarget = PostPath(p.Slug)
	default:
		p.NavigationTarget = PostPath(p.ID)
	}
	return p
}

// NormalizeAll keeps the input order.
func (n *Normalizer) NormalizeAll(recs []gjson.Result) []Post {
	posts := make([]Post, 0, len(recs))
	for _, rec := range recs {
		posts = append(posts, n.Normalize(rec))
	}
	return posts
}

func firstString(rec gjson.Result, keys ...string) string {
	for _, key := range keys {
		v := rec.Get(key)
		if v.IsObject() || v.IsArray() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func authorName(rec gjson.Result) string {
	for _, key := range authorKeys {
		v := rec.Get(key)
		if v.IsObject() {
			if s := firstString(v, authorNameKeys...); s != "" {
				return s
			}
			continue
		}
		if s := firstString(rec, key); s != "" {
			return s
		}
	}
	return ""
}

func publishedValue(rec gjson.Result) gjson.Result {
	for _, key := range dateKeys {
		v := rec.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type == gjson.String && strings.TrimSpace(v.Str) == "" {
			continue
		}
		return v
	}
	return gjson.Result{}
}

// readTime accepts positive numbers and numeric strings. Fractions are
// truncated the same way for both.
func readTime(v gjson.Result) int {
	var n int
	switch v.Type {
	case gjson.Number:
		n = int(v.Float())
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return DefaultReadTime
		}
		n = int(parsed)
	}
	if n <= 0 {
		return DefaultReadTime
	}
	return n
}
