package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/soulink/soulink/pkg/post"
	"github.com/soulink/soulink/pkg/render"
	"github.com/tidwall/gjson"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	viewGrid = "grid"
	viewList = "list"
)

func pageLayout(title, currentPath string, content g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title)),
			),
			Body(
				navbar(currentPath),
				Main(ID("content"), content),
			),
		),
	})
}

func navbar(currentPath string) g.Node {
	navLink := func(href, label string) g.Node {
		return A(Href(href), g.If(currentPath == href, Class("active")), g.Text(label))
	}
	return Nav(
		navLink("/", "Home"),
		navLink("/stories", "Stories"),
	)
}

func homeContent(posts []post.Post) g.Node {
	return Section(Class("featured"),
		H1(g.Text("Featured stories")),
		postList(posts, viewGrid),
		A(Href("/stories"), g.Text("All stories")),
	)
}

func storiesContent(posts []post.Post, text, view string) g.Node {
	toggle := func(v, label string) g.Node {
		q := url.Values{"view": {v}}
		if text != "" {
			q.Set("search", text)
		}
		return A(Href("/stories?"+q.Encode()), g.If(view == v, Class("active")), g.Text(label))
	}

	return Section(Class("stories"),
		H1(g.Text("Stories")),
		Form(Method("get"), Action("/stories"),
			Input(Type("search"), Name("search"), Value(text), Placeholder("Search stories")),
			Input(Type("hidden"), Name("view"), Value(view)),
			Button(Type("submit"), g.Text("Search")),
		),
		Div(Class("view-toggle"), toggle(viewGrid, "Grid"), toggle(viewList, "List")),
		postList(posts, view),
	)
}

func tagsContent(tags []string, posts []post.Post, loadErr error) g.Node {
	labels := make([]string, len(tags))
	for i, t := range tags {
		labels[i] = "#" + t
	}
	return Section(Class("tagged"),
		H1(g.Text(strings.Join(labels, " "))),
		g.If(loadErr != nil, P(Class("error"), g.Text("Could not load posts for these tags."))),
		postList(posts, viewGrid),
	)
}

func postList(posts []post.Post, view string) g.Node {
	if len(posts) == 0 {
		return P(Class("empty"), g.Text("No posts found."))
	}
	return Div(Class("posts "+view),
		g.Map(posts, func(p post.Post) g.Node { return postCard(p, view) }),
	)
}

func postCard(p post.Post, view string) g.Node {
	link := []g.Node{Href(p.NavigationTarget)}
	if p.IsExternal() {
		link = append(link, Target("_blank"), Rel("noopener noreferrer"))
	}

	excerpt := p.Excerpt
	if excerpt == "" {
		excerpt = render.NoDescription
	}

	return Article(Class("post"), Data("id", p.ID),
		g.If(view == viewGrid && p.Image != "", Img(Src(p.Image), Alt(p.Title))),
		H2(A(append(link, g.Text(p.Title))...)),
		postMeta(p),
		P(Class("excerpt"), g.Text(excerpt)),
		tagLinks(p.Tags),
	)
}

func postMeta(p post.Post) g.Node {
	return P(Class("meta"),
		Span(Class("author"), g.Text(p.AuthorName)),
		g.Text(" · "),
		g.El("time", g.If(!p.PublishedAt.IsZero(), g.Attr("datetime", p.PublishedAt.Format("2006-01-02"))), g.Text(p.PublishedLabel)),
		g.Text(" · "),
		Span(Class("read-time"), g.Text(fmt.Sprintf("%d min read", p.ReadTimeMinutes))),
	)
}

func tagLinks(tags []string) g.Node {
	if len(tags) == 0 {
		return P(Class("tags"), g.Text(render.NoTags))
	}
	return P(Class("tags"),
		g.Map(tags, func(t string) g.Node {
			return A(Class("tag"), Href(post.TagPath(t)), g.Text("#"+t))
		}),
	)
}

func postContent(p post.Post, rec gjson.Result) g.Node {
	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	body := markdown.ToHTML([]byte(render.Body(rec)), mdParser, nil)

	return Article(Class("post-detail"),
		H1(g.Text(p.Title)),
		postMeta(p),
		tagLinks(p.Tags),
		g.If(p.Image != "", Img(Src(p.Image), Alt(p.Title))),
		Div(Class("body"), g.Raw(string(body))),
	)
}

func errorContent(status int) g.Node {
	msg := "The post could not be loaded right now."
	switch status {
	case http.StatusNotFound:
		msg = "This post does not exist."
	case http.StatusUnauthorized:
		msg = "You need to be signed in to read this post."
	}
	return Section(Class("error"),
		H1(g.Text(http.StatusText(status))),
		P(g.Text(msg)),
		A(Href("/stories"), g.Text("Back to stories")),
	)
}
