package post

import (
	"strings"

	"github.com/tidwall/gjson"
)

// tagKeys are checked in order when a tag arrives as an object.
var tagKeys = []string{"name", "title", "tag"}

// NormalizeTags flattens a tags value into display strings. Anything that is
// not an array yields an empty slice; empty entries are dropped.
func NormalizeTags(v gjson.Result) []string {
	tags := []string{}
	if !v.IsArray() {
		return tags
	}
	for _, el := range v.Array() {
		if tag := tagLabel(el); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func tagLabel(el gjson.Result) string {
	switch {
	case el.Type == gjson.Null:
		return ""
	case el.IsObject():
		for _, key := range tagKeys {
			if s := el.Get(key).String(); s != "" {
				return s
			}
		}
		return strings.TrimSpace(el.Raw)
	default:
		return el.String()
	}
}

// SplitTags parses a comma separated tag list as typed by a user.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
