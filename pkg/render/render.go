// Package render prints feeds and posts for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/soulink/soulink/pkg/post"
	"gopkg.in/yaml.v3"
)

const (
	ViewGrid = "grid"
	ViewList = "list"
	ViewJSON = "json"
	ViewYAML = "yaml"

	DefaultFields    = "tadg"
	DefaultDelimiter = " | "

	NoDescription = "No description available."
	NoTags        = "No tags"
)

// fieldFlags documents the list view output flags.
var fieldFlags = map[rune]string{
	'i': "id",
	't': "title",
	'a': "author",
	'd': "published date",
	'r': "read time",
	'g': "tags",
	'e': "excerpt",
	'n': "navigation target",
	's': "source domain",
	'm': "image",
}

// Options control PrintFeed.
type Options struct {
	View      string
	Fields    string
	Delimiter string
}

// FieldsHelp lists the accepted output flags.
func FieldsHelp() string {
	return "i (id), t (title), a (author), d (date), r (read time), g (tags), e (excerpt), n (link), s (source domain), m (image)"
}

// Validate checks the view name and output flags.
func (o Options) Validate() error {
	switch o.View {
	case "", ViewGrid, ViewList, ViewJSON, ViewYAML:
	default:
		return fmt.Errorf("unknown view %q (available: grid, list, json, yaml)", o.View)
	}
	for _, f := range o.Fields {
		if _, ok := fieldFlags[f]; !ok {
			return fmt.Errorf("invalid output flag %q (available: %s)", f, FieldsHelp())
		}
	}
	return nil
}

// PrintFeed writes posts to w in the selected view.
func PrintFeed(w io.Writer, posts []post.Post, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if posts == nil {
		posts = []post.Post{}
	}

	switch opts.View {
	case ViewJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	case ViewYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(posts); err != nil {
			return err
		}
		return enc.Close()
	case ViewList:
		return printList(w, posts, opts)
	default:
		return printGrid(w, posts)
	}
}

func printGrid(w io.Writer, posts []post.Post) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPUBLISHED\tREAD\tTAGS\tSOURCE\t")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.ID,
			post.Truncate(p.Title, 48),
			p.AuthorName,
			p.PublishedLabel,
			readTime(p),
			tagLine(p),
			SourceHost(p.NavigationTarget),
		)
	}
	return tw.Flush()
}

func printList(w io.Writer, posts []post.Post, opts Options) error {
	fields := opts.Fields
	if fields == "" {
		fields = DefaultFields
	}
	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	for _, p := range posts {
		if line := createLine(p, fields, delimiter); line != "" {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func createLine(p post.Post, fields, delimiter string) string {
	var parts []string
	for _, f := range fields {
		switch f {
		case 'i':
			parts = append(parts, p.ID)
		case 't':
			parts = append(parts, p.Title)
		case 'a':
			parts = append(parts, p.AuthorName)
		case 'd':
			parts = append(parts, p.PublishedLabel)
		case 'r':
			parts = append(parts, readTime(p))
		case 'g':
			parts = append(parts, tagLine(p))
		case 'e':
			parts = append(parts, excerptOrPlaceholder(p))
		case 'n':
			parts = append(parts, p.NavigationTarget)
		case 's':
			parts = append(parts, SourceHost(p.NavigationTarget))
		case 'm':
			parts = append(parts, p.Image)
		}
	}
	return strings.Join(parts, delimiter)
}

func readTime(p post.Post) string {
	return strconv.Itoa(p.ReadTimeMinutes) + " min read"
}

func tagLine(p post.Post) string {
	if len(p.Tags) == 0 {
		return NoTags
	}
	labels := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		labels[i] = "#" + t
	}
	return strings.Join(labels, " ")
}

func excerptOrPlaceholder(p post.Post) string {
	if p.Excerpt == "" {
		return NoDescription
	}
	return p.Excerpt
}
