// Package storage keeps an offline snapshot of the blog feed in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/post"
	"github.com/soulink/soulink/pkg/search"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when reading a database that was never synced.
var ErrNoSnapshot = errors.New("no feed snapshot yet, run `soulink sync` first")

var postColumns = []string{
	"position", "id", "title", "published_label", "published_at", "author_name", "image",
	"read_time_minutes", "excerpt", "navigation_target", "slug", "url", "status",
}

type DB struct {
	sql *sql.DB
}

// SyncRun describes one snapshot replacement.
type SyncRun struct {
	Source    string
	PostCount int
	SyncedAt  time.Time
}

type Stats struct {
	Posts    int
	Tags     int
	Authors  int
	Untagged int
	LastSync SyncRun
}

type TagCount struct {
	Tag   string
	Posts int
}

// ListOptions controls selection when listing snapshot posts.
type ListOptions struct {
	Search string
	Tags   []string
	Limit  int
}

// Open migrates the database at path and opens it.
func Open(path string) (*DB, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ReplaceFeed swaps the stored snapshot for posts, keeping their order, and
// records the run.
func (d *DB) ReplaceFeed(ctx context.Context, source string, posts []post.Post) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM post_tags"); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return err
	}

	for i, p := range posts {
		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("posts").Cols(postColumns...).Values(
			i, p.ID, p.Title, p.PublishedLabel, timeOrNull(p.PublishedAt), p.AuthorName, nullIfEmpty(p.Image),
			p.ReadTimeMinutes, p.Excerpt, p.NavigationTarget, nullIfEmpty(p.Slug), nullIfEmpty(p.URL), nullIfEmpty(p.Status),
		)
		q, args := ib.BuildWithFlavor(sqlbuilder.SQLite)
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("inserting post %q: %w", p.ID, err)
		}

		if len(p.Tags) == 0 {
			continue
		}
		tb := sqlbuilder.NewInsertBuilder()
		tb.InsertInto("post_tags").Cols("post_position", "position", "tag")
		for j, tag := range p.Tags {
			tb.Values(i, j, tag)
		}
		q, args = tb.BuildWithFlavor(sqlbuilder.SQLite)
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("inserting tags of post %q: %w", p.ID, err)
		}
	}

	rb := sqlbuilder.NewInsertBuilder()
	rb.InsertInto("sync_runs").Cols("source", "post_count", "synced_at").Values(source, len(posts), time.Now().UTC().Format(time.RFC3339))
	q, args := rb.BuildWithFlavor(sqlbuilder.SQLite)
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	utils.Log.WithField("source", source).Debugf("Stored snapshot of %d posts", len(posts))
	return nil
}

// LastSync returns the most recent run, or ErrNoSnapshot.
func (d *DB) LastSync(ctx context.Context) (SyncRun, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("source", "post_count", "synced_at").From("sync_runs").OrderBy("id").Desc().Limit(1)
	q, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var (
		run      SyncRun
		syncedAt string
	)
	err := d.sql.QueryRowContext(ctx, q, args...).Scan(&run.Source, &run.PostCount, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRun{}, ErrNoSnapshot
	}
	if err != nil {
		return SyncRun{}, err
	}
	run.SyncedAt = parseTimestamp(syncedAt)
	return run, nil
}

// ListPosts returns the snapshot in feed order, narrowed by opts the same way
// the live feed is filtered.
func (d *DB) ListPosts(ctx context.Context, opts ListOptions) ([]post.Post, error) {
	if _, err := d.LastSync(ctx); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(postColumns...).From("posts").OrderBy("position")
	q, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		posts     []post.Post
		positions = map[int]int{}
	)
	for rows.Next() {
		var (
			p                      post.Post
			position               int
			publishedAt            sql.NullString
			image, slug, url, stat sql.NullString
		)
		if err := rows.Scan(&position, &p.ID, &p.Title, &p.PublishedLabel, &publishedAt, &p.AuthorName, &image,
			&p.ReadTimeMinutes, &p.Excerpt, &p.NavigationTarget, &slug, &url, &stat); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			p.PublishedAt = parseTimestamp(publishedAt.String)
		}
		p.Image, p.Slug, p.URL, p.Status = image.String, slug.String, url.String, stat.String
		p.Tags = []string{}
		positions[position] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.attachTags(ctx, posts, positions); err != nil {
		return nil, err
	}

	posts = search.Filter(posts, search.Query{Text: opts.Search, Tags: opts.Tags})
	if opts.Limit > 0 && len(posts) > opts.Limit {
		posts = posts[:opts.Limit]
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return posts, nil
}

func (d *DB) attachTags(ctx context.Context, posts []post.Post, positions map[int]int) error {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("post_position", "tag").From("post_tags").OrderBy("post_position", "position")
	q, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			position int
			tag      string
		)
		if err := rows.Scan(&position, &tag); err != nil {
			return err
		}
		if i, ok := positions[position]; ok {
			posts[i].Tags = append(posts[i].Tags, tag)
		}
	}
	return rows.Err()
}

// GetStats summarizes the stored snapshot.
func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	run, err := d.LastSync(ctx)
	if err != nil {
		return Stats{}, err
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(DISTINCT tag) FROM post_tags),
			(SELECT COUNT(DISTINCT author_name) FROM posts),
			(SELECT COUNT(*) FROM posts WHERE position NOT IN (SELECT post_position FROM post_tags));
	`
	s := Stats{LastSync: run}
	if err := d.sql.QueryRowContext(ctx, query).Scan(&s.Posts, &s.Tags, &s.Authors, &s.Untagged); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// TagCounts returns every stored tag with the number of posts carrying it,
// most used first.
func (d *DB) TagCounts(ctx context.Context) ([]TagCount, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("tag", "COUNT(DISTINCT post_position) AS n").From("post_tags").GroupBy("tag").OrderBy("n DESC", "tag")
	q, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []TagCount{}
	for rows.Next() {
		var c TagCount
		if err := rows.Scan(&c.Tag, &c.Posts); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func parseTimestamp(s string) time.Time {
	// CURRENT_TIMESTAMP format first, then what ReplaceFeed writes.
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func timeOrNull(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
