package search

import (
	"reflect"
	"testing"

	"github.com/soulink/soulink/pkg/post"
)

func samplePosts() []post.Post {
	return []post.Post{
		{ID: "1", Title: "Hello World", Tags: []string{"ai"}, Excerpt: "first"},
		{ID: "2", Title: "Other", Tags: []string{"farming"}, Excerpt: "second"},
		{ID: "3", Title: "Growing Tomatoes", Tags: []string{"Farming", "Garden"}, Excerpt: "A guide to AI-free soil"},
	}
}

func ids(posts []post.Post) []string {
	out := []string{}
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		posts []post.Post
		query Query
		want  []string
	}{
		{
			name:  "text matches title or tag",
			posts: samplePosts()[:2],
			query: Query{Text: "ai"},
			want:  []string{"1"},
		},
		{
			name:  "text is case insensitive and trimmed",
			posts: samplePosts(),
			query: Query{Text: "  HELLO "},
			want:  []string{"1"},
		},
		{
			name:  "text matches excerpt",
			posts: samplePosts(),
			query: Query{Text: "ai-free"},
			want:  []string{"3"},
		},
		{
			name:  "text matches tag substring",
			posts: samplePosts(),
			query: Query{Text: "gard"},
			want:  []string{"3"},
		},
		{
			name:  "tags match any selected tag ignoring case",
			posts: samplePosts(),
			query: Query{Tags: []string{"FARMING", "nothing"}},
			want:  []string{"2", "3"},
		},
		{
			name:  "tags need exact equality",
			posts: samplePosts(),
			query: Query{Tags: []string{"farm"}},
			want:  []string{},
		},
		{
			name:  "text and tags both apply",
			posts: samplePosts(),
			query: Query{Text: "tomato", Tags: []string{"farming"}},
			want:  []string{"3"},
		},
		{
			name:  "empty query keeps order",
			posts: samplePosts(),
			query: Query{Text: "   "},
			want:  []string{"1", "2", "3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(tc.posts, tc.query))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Filter(%+v) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	posts := samplePosts()
	_ = Filter(posts, Query{Text: "other"})
	if !reflect.DeepEqual(ids(posts), []string{"1", "2", "3"}) {
		t.Fatalf("input was modified: %v", ids(posts))
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ai", []string{"ai"}},
		{"ai,farming", []string{"ai", "farming"}},
		{"machine%20learning, go ,", []string{"machine learning", "go"}},
		{"a%2Cb", []string{"a,b"}},
		{"bad%zz", []string{"bad%zz"}},
		{"", nil},
	}
	for _, tc := range tests {
		if got := ParseTags(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseTags(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
