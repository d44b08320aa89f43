// Package pgstore stores posts as JSONB documents in PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Driver is the configuration name of this backend.
const Driver = "postgres"

const createTable = `
CREATE TABLE IF NOT EXISTS posts (
    id         TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is a store.Repository backed by a PostgreSQL table holding one JSONB
// document per post.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database at url and creates the posts table.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &store.ConnectionError{Op: "connect", Driver: Driver, Err: err}
	}

	s := &Store{pool: pool, logger: logger.With("store", Driver)}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var (
		id  string
		doc post.Document
	)
	if err := row.Scan(&id, &doc); err != nil {
		return nil, err
	}
	return post.FromDocument(id, doc), nil
}

// FindAll returns every post in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]*post.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, doc FROM posts ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapErr("find all", err)
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
	if err := rows.Err(); err != nil {
		return nil, wrapErr("find all", err)
	}
	return posts, nil
}

// FindByID returns the post with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (*post.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `SELECT id, doc FROM posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find", err)
	}
	return p, nil
}

// Save upserts a post. The createDate of an existing document is kept.
func (s *Store) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	saved := p.Clone()
	if saved.IsNew() {
		saved.ID = uuid.NewString()
		saved.CreateDate = nil
	}
	saved.Stamp(time.Now())

	const upsert = `
		INSERT INTO posts (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET doc = excluded.doc || jsonb_build_object('createDate', posts.doc->'createDate')
		RETURNING id, doc`

	out, err := scanPost(s.pool.QueryRow(ctx, upsert, saved.ID, saved.ToDocument()))
	if err != nil {
		return nil, wrapErr("save", err)
	}
	return out, nil
}

// DeleteByID removes the post with the given id.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteAll removes every post.
func (s *Store) DeleteAll(ctx context.Context) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts`)
	if err != nil {
		return wrapErr("delete all", err)
	}
	s.logger.Debug("deleted posts", "count", tag.RowsAffected())
	return nil
}

// Ping checks that a connection can be acquired.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &store.ConnectionError{Op: "ping", Driver: Driver, Err: err}
	}
	return nil
}

// Close closes every connection in the pool.
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// wrapErr marks failures that happened before the server answered as
// ConnectionErrors. Errors reported by the server itself are passed through.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return &store.ConnectionError{Op: op, Driver: Driver, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
