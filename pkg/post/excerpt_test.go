package post

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("x", 300)

	tests := []struct {
		name string
		rec  string
		max  int
		want string
	}{
		{"excerpt first", `{"excerpt":"short","body":"long body"}`, 50, "short"},
		{"summary before content", `{"summary":"sum","content":"con"}`, 50, "sum"},
		{"content before body", `{"content":"con","body":"bod"}`, 50, "con"},
		{"empty excerpt skipped", `{"excerpt":"","body":"bod"}`, 50, "bod"},
		{"markup stripped", `{"body":"<p>Hello</p><p>World</p>"}`, 50, "Hello World"},
		{"whitespace collapsed", `{"body":"  a \n\n\t b  "}`, 50, "a b"},
		{"no content", `{"title":"Only a title"}`, 50, ""},
		{"cut and trimmed", `{"body":"hello world again"}`, 7, "hello…"},
		{"exact length untouched", `{"body":"12345"}`, 5, "12345"},
		{"not an object", `42`, 50, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Excerpt(gjson.Parse(tc.rec), tc.max); got != tc.want {
				t.Fatalf("Excerpt(%s, %d) = %q, want %q", tc.rec, tc.max, got, tc.want)
			}
		})
	}

	t.Run("bounded with ellipsis", func(t *testing.T) {
		got := Excerpt(gjson.Parse(`{"body":"`+long+`"}`), 10)
		if n := utf8.RuneCountInString(got); n > 10 {
			t.Fatalf("excerpt has %d runes, want at most 10: %q", n, got)
		}
		if !strings.HasSuffix(got, "…") {
			t.Fatalf("excerpt %q should end with an ellipsis", got)
		}
	})

	t.Run("default length", func(t *testing.T) {
		got := Excerpt(gjson.Parse(`{"body":"`+long+`"}`), 0)
		if n := utf8.RuneCountInString(got); n != DefaultExcerptLength {
			t.Fatalf("excerpt has %d runes, want %d", n, DefaultExcerptLength)
		}
	})

	t.Run("multibyte text cut on rune boundary", func(t *testing.T) {
		got := Excerpt(gjson.Parse(`{"body":"ééééééééééé"}`), 4)
		if got != "ééé…" {
			t.Fatalf("Excerpt = %q", got)
		}
	})
}
