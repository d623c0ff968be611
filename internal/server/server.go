// Package server serves a read-only web view of the blog feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/post"
	"github.com/tidwall/gjson"
	"golang.org/x/net/netutil"
)

const (
	DefaultListen   = "127.0.0.1:8080"
	DefaultRefresh  = "@every 5m"
	DefaultMaxConns = 64
	DefaultFeatured = 6
)

// PostGetter fetches the raw record of a single post. *api.Client satisfies it.
type PostGetter interface {
	GetPost(ctx context.Context, id string) (gjson.Result, error)
}

type Config struct {
	Listen   string
	Refresh  string
	MaxConns int
	Featured int
}

type Server struct {
	cfg        Config
	source     feed.Source
	posts      PostGetter
	normalizer *post.Normalizer
	loader     *feed.Loader
}

// New builds a Server whose feed is refreshed from source.
func New(source feed.Source, posts PostGetter, normalizer *post.Normalizer, cfg Config) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Refresh == "" {
		cfg.Refresh = DefaultRefresh
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.Featured <= 0 {
		cfg.Featured = DefaultFeatured
	}
	if normalizer == nil {
		normalizer = &post.Normalizer{}
	}

	return &Server{
		cfg:        cfg,
		source:     source,
		posts:      posts,
		normalizer: normalizer,
		loader: feed.NewLoader(source,
			feed.WithNormalizer(normalizer),
			feed.WithUpdateHook(func(p []post.Post) {
				utils.Log.WithField("posts", len(p)).Info("Feed refreshed")
			}),
		),
	}
}

// Handler returns the routes of the web view.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /stories", s.handleStories)
	mux.HandleFunc("GET /tags/{tags}", s.handleTags)
	mux.HandleFunc("GET /posts/{id}", s.handlePost)
	mux.HandleFunc("GET /api/posts", s.handleAPIPosts)

	return mux
}

// Refresh reloads the shared feed. Failures keep the previous list.
func (s *Server) Refresh(ctx context.Context) {
	if _, err := s.loader.Load(ctx, nil); err != nil && !errors.Is(err, feed.ErrSuperseded) {
		utils.Log.WithError(err).Debug("Feed refresh failed")
	}
}

// Start loads the feed, schedules refreshes and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Refresh, func() { s.Refresh(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.Refresh, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, s.cfg.MaxConns)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	utils.Log.WithField("addr", ln.Addr().String()).Info("Starting server")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
