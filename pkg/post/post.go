package post

import (
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTitle    = "Untitled"
	DefaultAuthor   = "Unknown"
	DefaultReadTime = 2
	NoDate          = "—"
)

// Post is the canonical view model built from a raw API record.
type Post struct {
	ID               string    `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	PublishedLabel   string    `json:"published_label" yaml:"published_label"`
	PublishedAt      time.Time `json:"published_at,omitzero" yaml:"published_at,omitempty"`
	AuthorName       string    `json:"author_name" yaml:"author_name"`
	Image            string    `json:"image,omitempty" yaml:"image,omitempty"`
	Tags             []string  `json:"tags" yaml:"tags"`
	ReadTimeMinutes  int       `json:"read_time_minutes" yaml:"read_time_minutes"`
	Excerpt          string    `json:"excerpt" yaml:"excerpt"`
	NavigationTarget string    `json:"navigation_target" yaml:"navigation_target"`
	Slug             string    `json:"slug,omitempty" yaml:"slug,omitempty"`
	URL              string    `json:"url,omitempty" yaml:"url,omitempty"`
	Status           string    `json:"status,omitempty" yaml:"status,omitempty"`
}

// PostPath returns the router path for a post id or slug.
func PostPath(idOrSlug string) string {
	return "/posts/" + url.PathEscape(idOrSlug)
}

// TagPath returns the router path for a tag page. The tag is escaped the way
// browsers escape URI components so commas stay distinguishable from the
// multi-tag separator.
func TagPath(tag string) string {
	return "/tags/" + strings.ReplaceAll(url.QueryEscape(tag), "+", "%20")
}

// IsExternal reports whether the navigation target leaves the blog.
func (p Post) IsExternal() bool {
	return strings.HasPrefix(p.NavigationTarget, "http://") || strings.HasPrefix(p.NavigationTarget, "https://")
}
