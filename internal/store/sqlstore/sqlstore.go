// Package sqlstore stores posts in a single SQLite table.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Driver is the configuration name of this backend.
const Driver = "sqlite"

//go:embed schema.sql
var schema string

const dateLayout = time.RFC3339Nano

// Store is a store.Repository backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database file at path and migrates it.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &store.ConnectionError{Op: "open", Driver: Driver, Err: err}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &store.ConnectionError{Op: "open", Driver: Driver, Err: err}
	}
	// SQLite works best with a single connection for writes
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &store.ConnectionError{Op: "open", Driver: Driver, Err: err}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, logger: logger.With("store", Driver)}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*post.Post, error) {
	var (
		p       post.Post
		created string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &created); err != nil {
		return nil, err
	}
	t, err := time.Parse(dateLayout, created)
	if err != nil {
		return nil, fmt.Errorf("post %s: bad create_date %q: %w", p.ID, created, err)
	}
	p.CreateDate = &t
	return &p, nil
}

// FindAll returns every post in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]*post.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, create_date FROM posts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	defer rows.Close()

	posts := []*post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// FindByID returns the post with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (*post.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content, create_date FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", id, err)
	}
	return p, nil
}

// Save inserts or replaces a post. An existing row keeps its create_date.
func (s *Store) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	saved := p.Clone()
	if saved.IsNew() {
		saved.ID = uuid.NewString()
		saved.CreateDate = nil
	}
	saved.Stamp(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, create_date) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content`,
		saved.ID, saved.Title, saved.Content, saved.CreateDate.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", saved.ID, err)
	}

	return s.FindByID(ctx, saved.ID)
}

// DeleteByID removes the post with the given id.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteAll removes every post.
func (s *Store) DeleteAll(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts`)
	if err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("deleted posts", "count", n)
	}
	return nil
}

// Ping checks that the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &store.ConnectionError{Op: "ping", Driver: Driver, Err: err}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
