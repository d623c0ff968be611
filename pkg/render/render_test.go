package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/soulink/soulink/pkg/post"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

func samplePosts() []post.Post {
	return []post.Post{
		{
			ID:               "1",
			Title:            "Hello World",
			AuthorName:       "Jane",
			PublishedLabel:   "Jan 3, 2025",
			ReadTimeMinutes:  4,
			Tags:             []string{"ai", "farming"},
			Excerpt:          "first post",
			NavigationTarget: "/posts/hello-world",
		},
		{
			ID:               "2",
			Title:            "Elsewhere",
			AuthorName:       post.DefaultAuthor,
			PublishedLabel:   post.NoDate,
			ReadTimeMinutes:  post.DefaultReadTime,
			Tags:             []string{},
			NavigationTarget: "https://news.blog.example.co.uk/a/b",
		},
	}
}

func TestCreateLine(t *testing.T) {
	posts := samplePosts()
	tests := []struct {
		name   string
		p      post.Post
		fields string
		want   string
	}{
		{"default fields", posts[0], DefaultFields, "Hello World | Jane | Jan 3, 2025 | #ai #farming"},
		{"no tags", posts[1], "tg", "Elsewhere | No tags"},
		{"read time", posts[0], "r", "4 min read"},
		{"missing excerpt", posts[1], "e", NoDescription},
		{"source", posts[1], "is", "2 | example.co.uk"},
		{"local source", posts[0], "sn", "local | /posts/hello-world"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := createLine(tc.p, tc.fields, DefaultDelimiter); got != tc.want {
				t.Fatalf("createLine(%q) = %q, want %q", tc.fields, got, tc.want)
			}
		})
	}
}

func TestSourceHost(t *testing.T) {
	tests := map[string]string{
		"/posts/1":                       LocalSource,
		"":                               LocalSource,
		"https://blog.example.com/x":     "example.com",
		"http://a.b.example.co.uk/p?q=1": "example.co.uk",
		"http://localhost:8000/blog/x":   "localhost",
	}
	for in, want := range tests {
		if got := SourceHost(in); got != want {
			t.Errorf("SourceHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintFeedViews(t *testing.T) {
	posts := samplePosts()

	var buf bytes.Buffer
	if err := PrintFeed(&buf, posts, Options{View: ViewList, Fields: "it", Delimiter: ","}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := buf.String(), "1,Hello World\n2,Elsewhere\n"; got != want {
		t.Fatalf("list output = %q, want %q", got, want)
	}

	buf.Reset()
	if err := PrintFeed(&buf, posts, Options{}); err != nil {
		t.Fatalf("grid: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("grid has %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[2], "No tags") {
		t.Fatalf("unexpected grid:\n%s", buf.String())
	}

	buf.Reset()
	if err := PrintFeed(&buf, posts, Options{View: ViewJSON}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["title"] != "Hello World" {
		t.Fatalf("unexpected json: %s", buf.String())
	}

	buf.Reset()
	if err := PrintFeed(&buf, posts, Options{View: ViewYAML}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var fromYAML []post.Post
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if len(fromYAML) != 2 || fromYAML[1].NavigationTarget != posts[1].NavigationTarget {
		t.Fatalf("unexpected yaml: %s", buf.String())
	}
}

func TestPrintFeedEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintFeed(&buf, nil, Options{View: ViewJSON}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("empty feed = %q, want []", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := (Options{View: "cards"}).Validate(); err == nil {
		t.Fatal("expected an error for an unknown view")
	}
	if err := (Options{Fields: "tx"}).Validate(); err == nil {
		t.Fatal("expected an error for an unknown output flag")
	}
	if err := (Options{View: ViewList, Fields: "itadrgensm"}).Validate(); err != nil {
		t.Fatalf("all flags should be accepted: %v", err)
	}
}

func TestBodyConversions(t *testing.T) {
	body := "<h1>Title</h1><p>Some <strong>bold</strong> text</p><p>Second</p>"

	md, err := BodyMarkdown(body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "# Title") || !strings.Contains(md, "**bold**") {
		t.Fatalf("unexpected markdown: %q", md)
	}

	text, err := BodyText(body)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Title\n\nSome bold text\n\nSecond"; text != want {
		t.Fatalf("BodyText = %q, want %q", text, want)
	}

	plain := "no markup here"
	if md, _ := BodyMarkdown(plain); md != plain {
		t.Fatalf("plain body changed to %q", md)
	}
}

func TestPrintPost(t *testing.T) {
	rec := gjson.Parse(`{
		"id": 7,
		"title": "Rain",
		"author": {"username": "jane"},
		"created_at": "2025-01-03",
		"read_time": 3,
		"tags": ["weather"],
		"status": "draft",
		"body": "<p>It rained.</p>"
	}`)
	n := post.NewNormalizer(0, post.NewFormatter("", nil))

	var buf bytes.Buffer
	if err := PrintPost(&buf, rec, n, FormatMarkdown); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"# Rain", "jane · Jan 3, 2025 · 3 min read", "#weather", "Status: draft", "It rained."} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output is missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := PrintPost(&buf, gjson.Parse(`{"title": "Empty"}`), nil, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Empty\n=====") || !strings.Contains(buf.String(), NoDescription) {
		t.Fatalf("unexpected text output:\n%s", buf.String())
	}

	buf.Reset()
	if err := PrintPost(&buf, rec, n, FormatRaw); err != nil {
		t.Fatal(err)
	}
	if !gjson.Valid(buf.String()) {
		t.Fatalf("raw output is not JSON: %s", buf.String())
	}

	if err := PrintPost(&buf, rec, n, "html"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
