// Package feed loads post collections from a Source and keeps the most
// recent normalized list.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/post"
	"github.com/soulink/soulink/pkg/search"
)

// ErrSuperseded is returned by a load whose result was dropped because a
// newer load was issued after it.
var ErrSuperseded = errors.New("posts response superseded by a newer request")

// Source fetches the raw body of a posts collection, optionally scoped to
// tags. *api.Client satisfies it.
type Source interface {
	FetchPosts(ctx context.Context, tags []string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, tags []string) ([]byte, error)

func (f SourceFunc) FetchPosts(ctx context.Context, tags []string) ([]byte, error) {
	return f(ctx, tags)
}

// Loader owns one feed. Only the most recently issued load may replace the
// list; older responses are discarded when they resolve.
type Loader struct {
	source     Source
	normalizer *post.Normalizer
	reporter   Reporter
	onUpdate   func([]post.Post)

	mu    sync.Mutex
	gen   uint64
	posts []post.Post
}

type Option func(*Loader)

func WithNormalizer(n *post.Normalizer) Option {
	return func(l *Loader) { l.normalizer = n }
}

func WithReporter(r Reporter) Option {
	return func(l *Loader) { l.reporter = r }
}

// WithUpdateHook registers fn to receive every committed list. fn runs while
// the loader is locked and must not call back into it.
func WithUpdateHook(fn func([]post.Post)) Option {
	return func(l *Loader) { l.onUpdate = fn }
}

func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{
		source:     src,
		normalizer: &post.Normalizer{},
		reporter:   LogReporter{Log: utils.Log},
		posts:      []post.Post{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the collection and, unless superseded, replaces the list.
// Failures leave the current list untouched, go to the Reporter and are
// returned wrapped.
func (l *Loader) Load(ctx context.Context, tags []string) ([]post.Post, error) {
	return l.load(ctx, tags, false)
}

// LoadTagged is Load against the tag-scoped endpoint, with the result
// filtered again locally in case the server matched loosely.
func (l *Loader) LoadTagged(ctx context.Context, tags []string) ([]post.Post, error) {
	return l.load(ctx, tags, true)
}

// Posts returns a copy of the current list.
func (l *Loader) Posts() []post.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]post.Post(nil), l.posts...)
}

func (l *Loader) load(ctx context.Context, tags []string, refilter bool) ([]post.Post, error) {
	gen := l.begin()

	body, err := l.source.FetchPosts(ctx, tags)
	if err != nil {
		return nil, l.fail(gen, fmt.Errorf("fetching posts: %w", err))
	}

	recs, err := Records(body)
	if err != nil {
		return nil, l.fail(gen, err)
	}
	utils.Log.Debugf("Resolved %d post records", len(recs))

	posts := l.normalizer.NormalizeAll(recs)
	if refilter && len(tags) > 0 {
		posts = search.Filter(posts, search.Query{Tags: tags})
	}

	if !l.commit(gen, posts) {
		return nil, ErrSuperseded
	}
	return append([]post.Post(nil), posts...), nil
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}

func (l *Loader) commit(gen uint64, posts []post.Post) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		utils.Log.Debugf("Dropping superseded posts response (generation %d, latest %d)", gen, l.gen)
		return false
	}
	l.posts = posts
	if l.onUpdate != nil {
		l.onUpdate(append([]post.Post(nil), posts...))
	}
	return true
}

// fail reports err unless a newer load already owns the feed.
func (l *Loader) fail(gen uint64, err error) error {
	if !l.current(gen) {
		utils.Log.WithError(err).Debug("Ignoring failure of a superseded posts request")
		return ErrSuperseded
	}
	if l.reporter != nil {
		l.reporter.Report(err)
	}
	return err
}
