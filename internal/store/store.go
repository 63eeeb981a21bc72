// Package store is a database/sql implementation of cms.Gateway for running
// the blog without Sanity. It supports SQLite for local development and
// PostgreSQL for hosted deployments.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"portfolio/internal/apierr"
	"portfolio/internal/core"
	"portfolio/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// DatabaseFile is the SQLite file created inside the data directory.
	DatabaseFile = "portfolio.db"
)

// Store represents a SQL-backed post store
type Store struct {
	db     *sql.DB
	driver string
	path   string
	log    *slog.Logger
}

// NewStore creates a new store backed by a SQLite database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open(DriverSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	return open(db, DriverSQLite, dbPath)
}

// NewPostgresStore connects to PostgreSQL using connectionString.
func NewPostgresStore(connectionString string) (*Store, error) {
	db, err := sql.Open(DriverPostgres, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return open(db, DriverPostgres, "")
}

func open(db *sql.DB, driver, path string) (*Store, error) {
	s := &Store{db: db, driver: driver, path: path, log: logger.Get()}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

// initialize creates the posts and experience tables and their indexes
func (s *Store) initialize() error {
	timeType := "DATETIME"
	if s.driver == DriverPostgres {
		timeType = "TIMESTAMPTZ"
	}

	postsTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS blog_posts (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		published_at %[1]s NOT NULL,
		modified_at %[1]s,
		tags TEXT NOT NULL DEFAULT '[]',
		source TEXT NOT NULL DEFAULT '',
		generated BOOLEAN NOT NULL DEFAULT FALSE,
		read_time INTEGER NOT NULL DEFAULT 0
	);`, timeType)

	publishedIndex := `CREATE INDEX IF NOT EXISTS idx_blog_posts_published_at ON blog_posts (published_at DESC);`

	experienceTable := `
	CREATE TABLE IF NOT EXISTS experience (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		date_range TEXT NOT NULL DEFAULT '',
		duties TEXT NOT NULL DEFAULT '[]',
		sort_order INTEGER NOT NULL DEFAULT 0
	);`

	for _, stmt := range []string{postsTable, publishedIndex, experienceTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// FetchPosts returns a page of post summaries ordered by publish date, newest first.
func (s *Store) FetchPosts(ctx context.Context, limit, offset int) ([]core.PostSummary, error) {
	query := s.rebind(`
		SELECT id, slug, title, summary, published_at, tags, generated, read_time
		FROM blog_posts
		ORDER BY published_at DESC, id
		LIMIT ? OFFSET ?`)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apierr.Persistence("failed to query posts", err)
	}
	defer rows.Close()

	posts := []core.PostSummary{}
	for rows.Next() {
		var (
			p        core.PostSummary
			slug     string
			tagsJSON string
		)
		if err := rows.Scan(&p.ID, &slug, &p.Title, &p.Summary, &p.PublishedAt, &tagsJSON, &p.Generated, &p.ReadTime); err != nil {
			return nil, apierr.Persistence("failed to scan post", err)
		}
		p.Slug = core.NewSlug(slug)
		p.PublishedAt = p.PublishedAt.UTC()
		if p.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, apierr.Persistence("failed to decode tags", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Persistence("failed to iterate posts", err)
	}
	return posts, nil
}

// FetchPostBySlug returns the full post stored under slug.
func (s *Store) FetchPostBySlug(ctx context.Context, slug string) (*core.Post, error) {
	query := s.rebind(`
		SELECT id, slug, title, summary, body, published_at, modified_at, tags, source, generated, read_time
		FROM blog_posts
		WHERE slug = ?`)

	var (
		p          core.Post
		storedSlug string
		bodyJSON   string
		modifiedAt sql.NullTime
		tagsJSON   string
	)
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID, &storedSlug, &p.Title, &p.Summary, &bodyJSON, &p.PublishedAt,
		&modifiedAt, &tagsJSON, &p.Source, &p.Generated, &p.ReadTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound(apierr.CodePostNotFound, fmt.Sprintf("no post with slug %q", slug))
	}
	if err != nil {
		return nil, apierr.Persistence("failed to query post", err)
	}

	p.Slug = core.NewSlug(storedSlug)
	p.PublishedAt = p.PublishedAt.UTC()
	if modifiedAt.Valid {
		t := modifiedAt.Time.UTC()
		p.ModifiedAt = &t
	}
	if err := json.Unmarshal([]byte(bodyJSON), &p.Body); err != nil {
		return nil, apierr.Persistence("failed to decode body", err)
	}
	if p.Tags, err = decodeTags(tagsJSON); err != nil {
		return nil, apierr.Persistence("failed to decode tags", err)
	}
	return &p, nil
}

// CountPosts returns the number of stored posts.
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&n); err != nil {
		return 0, apierr.Persistence("failed to count posts", err)
	}
	return n, nil
}

// CreatePost inserts doc under a fresh id. A duplicate slug is reported as a
// persistence error.
func (s *Store) CreatePost(ctx context.Context, doc core.Document) (*core.Post, error) {
	if doc.Slug.Current == "" {
		return nil, apierr.Validation("post slug is empty", map[string]string{"slug": "cannot be blank"})
	}

	bodyJSON, err := json.Marshal(doc.Body)
	if err != nil {
		return nil, apierr.Persistence("failed to encode body", err)
	}
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, apierr.Persistence("failed to encode tags", err)
	}

	id := uuid.NewString()
	query := s.rebind(`
		INSERT INTO blog_posts (id, slug, title, summary, body, published_at, tags, source, generated, read_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query,
		id, doc.Slug.Current, doc.Title, doc.Summary, string(bodyJSON),
		doc.PublishedAt.UTC(), string(tagsJSON), doc.Source, doc.Generated, doc.ReadTime,
	)
	if err != nil {
		return nil, apierr.Persistence("failed to insert post", err)
	}

	s.log.Info("Stored post", "id", id, "slug", doc.Slug.Current, "driver", s.driver)
	return doc.ToPost(id), nil
}

// FetchExperience returns the work history ordered by sort order.
func (s *Store) FetchExperience(ctx context.Context) ([]core.Experience, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, company, location, date_range, duties, sort_order
		FROM experience
		ORDER BY sort_order ASC, title`)
	if err != nil {
		return nil, apierr.Persistence("failed to query experience", err)
	}
	defer rows.Close()

	entries := []core.Experience{}
	for rows.Next() {
		var (
			e          core.Experience
			dutiesJSON string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.Range, &dutiesJSON, &e.Order); err != nil {
			return nil, apierr.Persistence("failed to scan experience", err)
		}
		if e.Duties, err = decodeTags(dutiesJSON); err != nil {
			return nil, apierr.Persistence("failed to decode duties", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Persistence("failed to iterate experience", err)
	}
	return entries, nil
}

// CreateExperience inserts e under a fresh id.
func (s *Store) CreateExperience(ctx context.Context, e core.Experience) (*core.Experience, error) {
	if e.Duties == nil {
		e.Duties = []string{}
	}
	dutiesJSON, err := json.Marshal(e.Duties)
	if err != nil {
		return nil, apierr.Persistence("failed to encode duties", err)
	}

	e.ID = uuid.NewString()
	query := s.rebind(`
		INSERT INTO experience (id, title, company, location, date_range, duties, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if _, err := s.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Company, e.Location, e.Range, string(dutiesJSON), e.Order,
	); err != nil {
		return nil, apierr.Persistence("failed to insert experience", err)
	}

	s.log.Info("Stored experience", "id", e.ID, "company", e.Company, "driver", s.driver)
	return &e, nil
}

// decodeTags decodes a JSON string array column; duties share the format.
func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
