package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/api"
	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/post"
	"github.com/soulink/soulink/pkg/search"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	posts := s.loader.Posts()
	if len(posts) > s.cfg.Featured {
		posts = posts[:s.cfg.Featured]
	}
	pageLayout("Soulink", "/", homeContent(posts)).Render(w)
}

func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("search")
	view := q.Get("view")
	if view != viewList {
		view = viewGrid
	}

	posts := search.Filter(s.loader.Posts(), search.Query{Text: text})
	pageLayout("Stories - Soulink", "/stories", storiesContent(posts, text, view)).Render(w)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags := search.ParseTags(r.PathValue("tags"))
	if len(tags) == 0 {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}

	// Tag pages own their own feed so they never replace the shared one.
	loader := feed.NewLoader(s.source,
		feed.WithNormalizer(s.normalizer),
		feed.WithReporter(feed.LogReporter{Log: utils.Log.WithField("tags", tags)}),
	)
	posts, err := loader.LoadTagged(r.Context(), tags)
	pageLayout("Tagged posts - Soulink", "", tagsContent(tags, posts, err)).Render(w)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := s.postID(r.PathValue("id"))
	rec, err := s.posts.GetPost(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, api.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, api.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		utils.Log.WithError(err).WithField("id", id).Warn("Could not load post")
		w.WriteHeader(status)
		pageLayout("Post not available - Soulink", "", errorContent(status)).Render(w)
		return
	}

	p := s.normalizer.Normalize(rec)
	pageLayout(p.Title+" - Soulink", "", postContent(p, rec)).Render(w)
}

func (s *Server) handleAPIPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts := search.Filter(s.loader.Posts(), search.Query{
		Text: q.Get("search"),
		Tags: search.ParseTags(q.Get("tags")),
	})
	if posts == nil {
		posts = []post.Post{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		utils.Log.WithError(err).Debug("Writing posts response failed")
	}
}

// postID maps a slug from a card link to the id the detail endpoint expects.
// Unknown values are passed through unchanged.
func (s *Server) postID(idOrSlug string) string {
	for _, p := range s.loader.Posts() {
		if p.Slug != "" && p.Slug == idOrSlug && p.ID != "" {
			return p.ID
		}
	}
	return idOrSlug
}
