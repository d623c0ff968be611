package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	postsPath       = "/blog/api/posts/"
	taggedPostsPath = "/blog/api/posts/tag/"
	searchPath      = "/blog/api/posts/search/"
	rssPath         = "/blog/feed/"
	userPostsPath   = "/blog/posts/"
	createPostPath  = "/blog/posts/create/"
	profilePath     = "/blog/user-profile/"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// NewPost is the payload of CreatePost.
type NewPost struct {
	Title  string
	Body   string
	Status string
	Tags   []string
}

// PostPatch lists the fields to change in UpdatePost. Nil fields are left
// untouched.
type PostPatch struct {
	Title  *string
	Body   *string
	Status *string
	Tags   []string
}

// Empty reports whether the patch would change nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Status == nil && p.Tags == nil
}

// Profile is the signed in user's public profile.
type Profile struct {
	Name  string
	Email string
	Image string
}

// FetchPosts returns the raw body of the public posts collection. With tags
// it queries the tag-scoped endpoint.
func (c *Client) FetchPosts(ctx context.Context, tags []string) ([]byte, error) {
	if len(tags) == 0 {
		return c.send(ctx, request{Method: http.MethodGet, Path: postsPath})
	}
	return c.send(ctx, request{
		Method: http.MethodGet,
		Path:   taggedPostsPath,
		Query:  url.Values{"tags": {strings.Join(tags, ",")}},
	})
}

// SearchPosts runs the server side full text search.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]byte, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	return c.send(ctx, request{
		Method: http.MethodGet,
		Path:   searchPath,
		Query:  url.Values{"query": {query}},
	})
}

// LatestFeed returns the RSS document of the latest published posts.
func (c *Client) LatestFeed(ctx context.Context) ([]byte, error) {
	return c.send(ctx, request{
		Method: http.MethodGet,
		Path:   rssPath,
		Accept: "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
	})
}

// GetPost fetches a single post. The bearer token is sent when configured.
func (c *Client) GetPost(ctx context.Context, id string) (gjson.Result, error) {
	if err := checkID(id); err != nil {
		return gjson.Result{}, err
	}
	return c.sendJSON(ctx, request{
		Method: http.MethodGet,
		Path:   userPostsPath + url.PathEscape(id) + "/",
		Auth:   authOptional,
	})
}

// MyPosts lists the signed in user's posts, optionally narrowed to one status.
func (c *Client) MyPosts(ctx context.Context, status string) ([]byte, error) {
	var q url.Values
	if status != "" {
		if err := checkStatus(status); err != nil {
			return nil, err
		}
		q = url.Values{"status": {status}}
	}
	return c.send(ctx, request{Method: http.MethodGet, Path: userPostsPath, Query: q, Auth: authRequired})
}

// CreatePost submits a new post as a form, which is what the create endpoint
// accepts.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (gjson.Result, error) {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Body) == "" {
		return gjson.Result{}, fmt.Errorf("a post needs both a title and a body")
	}
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	if err := checkStatus(status); err != nil {
		return gjson.Result{}, err
	}

	form := url.Values{}
	form.Set("title", p.Title)
	form.Set("body", p.Body)
	form.Set("status", status)
	if len(p.Tags) > 0 {
		form.Set("tags", strings.Join(p.Tags, ", "))
	}

	return c.sendJSON(ctx, request{
		Method:      http.MethodPost,
		Path:        createPostPath,
		Auth:        authRequired,
		ContentType: "application/x-www-form-urlencoded",
		Body:        []byte(form.Encode()),
	})
}

// UpdatePost sends a partial update with only the fields set in patch.
func (c *Client) UpdatePost(ctx context.Context, id string, patch PostPatch) (gjson.Result, error) {
	if err := checkID(id); err != nil {
		return gjson.Result{}, err
	}
	if patch.Empty() {
		return gjson.Result{}, fmt.Errorf("nothing to update")
	}
	if patch.Status != nil {
		if err := checkStatus(*patch.Status); err != nil {
			return gjson.Result{}, err
		}
	}

	body, err := patchBody(patch)
	if err != nil {
		return gjson.Result{}, err
	}
	return c.sendJSON(ctx, request{
		Method:      http.MethodPatch,
		Path:        userPostsPath + url.PathEscape(id) + "/",
		Auth:        authRequired,
		ContentType: "application/json",
		Body:        []byte(body),
	})
}

// DeletePost removes one of the user's posts. The endpoint refuses deletes
// that are not explicitly confirmed, so the confirmation is always sent.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	body, err := sjson.Set("{}", "confirm", true)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, request{
		Method:      http.MethodDelete,
		Path:        userPostsPath + url.PathEscape(id) + "/delete/",
		Auth:        authRequired,
		ContentType: "application/json",
		Body:        []byte(body),
	})
	return err
}

// Profile returns the signed in user's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	res, err := c.sendJSON(ctx, request{Method: http.MethodGet, Path: profilePath, Auth: authRequired})
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Name:  res.Get("name").String(),
		Email: res.Get("email").String(),
		Image: res.Get("image").String(),
	}, nil
}

func patchBody(patch PostPatch) (string, error) {
	body := "{}"
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.Set(body, path, v)
		}
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Body != nil {
		set("body", *patch.Body)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Tags != nil {
		set("tags", patch.Tags)
	}
	if err != nil {
		return "", fmt.Errorf("building update payload: %w", err)
	}
	return body, nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("post id must not be empty")
	}
	return nil
}

func checkStatus(status string) error {
	switch status {
	case StatusDraft, StatusPublished:
		return nil
	}
	return fmt.Errorf("invalid post status %q (available: %s, %s)", status, StatusDraft, StatusPublished)
}
