package render

import (
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/soulink/soulink/pkg/post"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatRaw      = "raw"
)

var bodyKeys = []string{"body", "content"}

const textBlocks = "p, h1, h2, h3, h4, h5, h6, li, pre"

// Body returns the first non-empty body field of a raw post record.
func Body(rec gjson.Result) string {
	for _, key := range bodyKeys {
		if s := strings.TrimSpace(rec.Get(key).String()); s != "" {
			return s
		}
	}
	return ""
}

// BodyMarkdown converts an HTML body to markdown. Bodies without markup are
// returned as they are.
func BodyMarkdown(body string) (string, error) {
	if !strings.Contains(body, "<") {
		return body, nil
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse post body: %w", err)
	}
	md, err := htmltomarkdown.ConvertNode(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert post body to markdown: %w", err)
	}
	return strings.TrimSpace(string(md)), nil
}

// BodyText drops all markup from body and keeps one paragraph per block
// element.
func BodyText(body string) (string, error) {
	if !strings.Contains(body, "<") {
		return body, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse post body: %w", err)
	}

	var paragraphs []string
	doc.Find(textBlocks).Each(func(_ int, s *goquery.Selection) {
		if text := post.CleanText(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return post.CleanText(doc.Text()), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// PrintPost writes a single post record in the given format.
func PrintPost(w io.Writer, rec gjson.Result, n *post.Normalizer, format string) error {
	if n == nil {
		n = &post.Normalizer{}
	}

	switch format {
	case FormatRaw:
		_, err := fmt.Fprintln(w, gjson.Get(rec.Raw, "@pretty").String())
		return err
	case "", FormatMarkdown, FormatText:
	default:
		return fmt.Errorf("unknown format %q (available: markdown, text, raw)", format)
	}

	p := n.Normalize(rec)
	body := Body(rec)

	var (
		rendered string
		err      error
	)
	if format == FormatText {
		rendered, err = BodyText(body)
	} else {
		rendered, err = BodyMarkdown(body)
	}
	if err != nil {
		return err
	}

	var sb strings.Builder
	if format == FormatText {
		sb.WriteString(p.Title + "\n")
		sb.WriteString(strings.Repeat("=", len([]rune(p.Title))) + "\n\n")
	} else {
		sb.WriteString("# " + p.Title + "\n\n")
	}
	fmt.Fprintf(&sb, "%s · %s · %s\n", p.AuthorName, p.PublishedLabel, readTime(p))
	fmt.Fprintf(&sb, "%s\n", tagLine(p))
	if p.Status != "" {
		fmt.Fprintf(&sb, "Status: %s\n", p.Status)
	}
	if p.Image != "" {
		fmt.Fprintf(&sb, "Image: %s\n", p.Image)
	}
	sb.WriteString("\n")
	if rendered == "" {
		sb.WriteString(NoDescription + "\n")
	} else {
		sb.WriteString(rendered + "\n")
	}

	_, err = io.WriteString(w, sb.String())
	return err
}
