package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/tidwall/sjson"
)

// RSSFetcher returns a raw RSS or Atom document. *api.Client satisfies it.
type RSSFetcher interface {
	LatestFeed(ctx context.Context) ([]byte, error)
}

// RSSSource turns the blog's syndication feed into a posts collection so it
// can go through the same Loader as the JSON API. The feed has no tag
// scoping; use LoadTagged to filter locally.
type RSSSource struct {
	fetcher RSSFetcher
	parser  *gofeed.Parser
}

func NewRSSSource(f RSSFetcher) *RSSSource {
	return &RSSSource{fetcher: f, parser: gofeed.NewParser()}
}

func (s *RSSSource) FetchPosts(ctx context.Context, _ []string) ([]byte, error) {
	data, err := s.fetcher.LatestFeed(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ItemsToRecords(parsed.Items)
}

// ItemsToRecords encodes feed items as a JSON array of raw post records.
func ItemsToRecords(items []*gofeed.Item) ([]byte, error) {
	out := "[]"
	for _, item := range items {
		if item == nil {
			continue
		}
		rec, err := itemRecord(item)
		if err != nil {
			return nil, fmt.Errorf("encoding feed item %q: %w", item.Title, err)
		}
		if out, err = sjson.SetRaw(out, "-1", rec); err != nil {
			return nil, err
		}
	}
	return []byte(out), nil
}

func itemRecord(item *gofeed.Item) (string, error) {
	id := item.GUID
	if id == "" {
		id = item.Link
	}

	fields := []struct {
		path  string
		value string
	}{
		{"id", id},
		{"title", item.Title},
		{"url", item.Link},
		{"summary", item.Description},
		{"content", item.Content},
		{"publish", item.Published},
		{"author", itemAuthor(item)},
		{"image", itemImage(item)},
	}

	rec := "{}"
	var err error
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if rec, err = sjson.Set(rec, f.path, f.value); err != nil {
			return "", err
		}
	}
	if len(item.Categories) > 0 {
		if rec, err = sjson.Set(rec, "tags", item.Categories); err != nil {
			return "", err
		}
	}
	return rec, nil
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
