package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/soulink/soulink/pkg/api"
	"github.com/soulink/soulink/pkg/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const feedBody = `{"results": [
	{"id": 1, "title": "Rain on the fields", "tags": ["farming", "weather"], "body": "It rained.", "slug": "rain"},
	{"id": 2, "title": "Hello AI", "tags": [{"name": "ai"}], "summary": "Models", "url": "https://example.com/hello"},
	{"id": 3, "title": "Quiet", "tags": []}
]}`

type fakeSource struct {
	mu   sync.Mutex
	body string
	err  error
	tags [][]string
}

func (f *fakeSource) FetchPosts(ctx context.Context, tags []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tags)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

type fakePosts map[string]string

func (f fakePosts) GetPost(ctx context.Context, id string) (gjson.Result, error) {
	raw, ok := f[id]
	if !ok {
		return gjson.Result{}, &api.StatusError{Method: http.MethodGet, Path: "/blog/posts/" + id + "/", StatusCode: http.StatusNotFound}
	}
	return gjson.Parse(raw), nil
}

func newTestServer(t *testing.T, src *fakeSource) (*Server, *httptest.Server) {
	t.Helper()
	s := New(src, fakePosts{
		"7": `{"id": 7, "title": "Detail", "tags": ["ai"], "body": "Some **bold** words", "created_at": "2025-01-03"}`,
	}, post.NewNormalizer(0, nil), Config{Featured: 2})
	s.Refresh(context.Background())

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getDoc(t *testing.T, url string, wantStatus int) *goquery.Document {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestHomeShowsFeaturedPosts(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: feedBody})

	doc := getDoc(t, ts.URL+"/", http.StatusOK)
	cards := doc.Find("article.post")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "Rain on the fields", strings.TrimSpace(cards.First().Find("h2").Text()))

	href, _ := cards.First().Find("h2 a").Attr("href")
	assert.Equal(t, "/posts/rain", href)
	target, _ := cards.Eq(1).Find("h2 a").Attr("target")
	assert.Equal(t, "_blank", target)
}

func TestStoriesSearchAndView(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: feedBody})

	doc := getDoc(t, ts.URL+"/stories?search=RAIN&view=list", http.StatusOK)
	cards := doc.Find("div.posts.list article.post")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "It rained.", cards.Find("p.excerpt").Text())

	val, _ := doc.Find(`input[name="search"]`).Attr("value")
	assert.Equal(t, "RAIN", val)

	doc = getDoc(t, ts.URL+"/stories", http.StatusOK)
	assert.Equal(t, 3, doc.Find("div.posts.grid article.post").Length())
	assert.Equal(t, "No tags", doc.Find("article.post").Last().Find("p.tags").Text())
	assert.Equal(t, "No description available.", doc.Find("article.post").Last().Find("p.excerpt").Text())
}

func TestTagPageUsesTaggedFeed(t *testing.T) {
	src := &fakeSource{body: feedBody}
	s, ts := newTestServer(t, src)

	doc := getDoc(t, ts.URL+"/tags/Farming,%20ai", http.StatusOK)
	assert.Equal(t, "#Farming #ai", doc.Find("h1").Text())
	assert.Equal(t, 2, doc.Find("article.post").Length())

	src.mu.Lock()
	last := src.tags[len(src.tags)-1]
	src.mu.Unlock()
	assert.Equal(t, []string{"Farming", "ai"}, last)

	// The shared feed is untouched.
	assert.Len(t, s.loader.Posts(), 3)
}

func TestTagLinksAreEscaped(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: `[{"id": 1, "tags": ["machine learning"]}]`})

	doc := getDoc(t, ts.URL+"/stories", http.StatusOK)
	href, _ := doc.Find("a.tag").Attr("href")
	assert.Equal(t, "/tags/machine%20learning", href)
}

func TestPostDetail(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: feedBody})

	doc := getDoc(t, ts.URL+"/posts/7", http.StatusOK)
	assert.Equal(t, "Detail", doc.Find("article.post-detail h1").Text())
	assert.Equal(t, "bold", doc.Find("div.body strong").Text())
	assert.Contains(t, doc.Find("p.meta").Text(), "Jan 3, 2025")

	doc = getDoc(t, ts.URL+"/posts/404", http.StatusNotFound)
	assert.Contains(t, doc.Find("section.error").Text(), "does not exist")
}

func TestAPIPosts(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: feedBody})

	resp, err := http.Get(ts.URL + "/api/posts?tags=AI")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))

	var posts []post.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestRefreshFailureKeepsFeed(t *testing.T) {
	src := &fakeSource{body: feedBody}
	s, ts := newTestServer(t, src)

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.mu.Unlock()
	s.Refresh(context.Background())

	doc := getDoc(t, ts.URL+"/stories", http.StatusOK)
	assert.Equal(t, 3, doc.Find("article.post").Length())
}

func TestEmptyFeed(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{body: `{"detail": "nothing"}`})

	doc := getDoc(t, ts.URL+"/", http.StatusOK)
	assert.Equal(t, "No posts found.", doc.Find("p.empty").Text())

	resp, err := http.Get(ts.URL + "/api/posts")
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSluggedCardOpensDetail(t *testing.T) {
	src := &fakeSource{body: `[{"id": 7, "title": "Detail", "slug": "detail-post"}]`}
	_, ts := newTestServer(t, src)

	doc := getDoc(t, ts.URL+"/stories", http.StatusOK)
	href, ok := doc.Find("article.post h2 a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/posts/detail-post", href)

	doc = getDoc(t, ts.URL+href, http.StatusOK)
	assert.Equal(t, "Detail", doc.Find("article.post-detail h1").Text())

	// Ids keep working directly.
	getDoc(t, ts.URL+"/posts/7", http.StatusOK)
}
