package post

import (
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"mixed shapes", `["a", {"name":"b"}, {"title":"c"}, 5, null]`, []string{"a", "b", "c", "5"}},
		{"tag key", `[{"tag":"go"}, {"slug":"x","name":"rust"}]`, []string{"go", "rust"}},
		{"name wins over title", `[{"name":"n","title":"t"}]`, []string{"n"}},
		{"empty name falls through", `[{"name":"","title":"t"}]`, []string{"t"}},
		{"object without known keys", `[{"id":3}]`, []string{`{"id":3}`}},
		{"empty strings dropped", `["", "x", ""]`, []string{"x"}},
		{"booleans stringified", `[true, false]`, []string{"true", "false"}},
		{"order kept", `["z", "a", "m"]`, []string{"z", "a", "m"}},
		{"not an array", `"ai"`, []string{}},
		{"object", `{"name":"ai"}`, []string{}},
		{"null", `null`, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeTags(gjson.Parse(tc.raw))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("NormalizeTags(%s) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}

	t.Run("missing value", func(t *testing.T) {
		got := NormalizeTags(gjson.Get(`{}`, "tags"))
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" ai, typescript ,,farming ")
	want := []string{"ai", "typescript", "farming"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitTags = %#v, want %#v", got, want)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Fatalf("SplitTags(\"\") = %#v, want empty", got)
	}
}

func TestPaths(t *testing.T) {
	if got := TagPath("machine learning"); got != "/tags/machine%20learning" {
		t.Fatalf("TagPath = %q", got)
	}
	if got := TagPath("a,b"); got != "/tags/a%2Cb" {
		t.Fatalf("TagPath = %q", got)
	}
	if got := PostPath("hello-world"); got != "/posts/hello-world" {
		t.Fatalf("PostPath = %q", got)
	}
}
