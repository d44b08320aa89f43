package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hmans/posts/internal/config"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
	"github.com/hmans/posts/internal/store/filestore"
	"github.com/hmans/posts/internal/store/sqlstore"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		path   string
		check  func(t *testing.T, repo store.Repository)
	}{
		{
			name:   "file",
			driver: "file",
			path:   "posts",
			check: func(t *testing.T, repo store.Repository) {
				if _, ok := repo.(*filestore.Store); !ok {
					t.Errorf("Open() = %T, want *filestore.Store", repo)
				}
			},
		},
		{
			name:   "sqlite directory",
			driver: "sqlite",
			path:   "data",
			check: func(t *testing.T, repo store.Repository) {
				if _, ok := repo.(*sqlstore.Store); !ok {
					t.Errorf("Open() = %T, want *sqlstore.Store", repo)
				}
			},
		},
		{
			name:   "sqlite file",
			driver: "sqlite",
			path:   "blog.sqlite",
			check: func(t *testing.T, repo store.Repository) {
				if _, ok := repo.(*sqlstore.Store); !ok {
					t.Errorf("Open() = %T, want *sqlstore.Store", repo)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Driver = tt.driver
			cfg.Store.Path = filepath.Join(t.TempDir(), tt.path)

			ctx := context.Background()
			repo, err := Open(ctx, cfg, quietLogger())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer repo.Close(ctx)

			tt.check(t, repo)

			if _, err := repo.Save(ctx, post.New("T", "C")); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		})
	}
}

func TestOpenFileIDLength(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "file"
	cfg.Store.Path = t.TempDir()
	cfg.Store.IDLength = 5

	ctx := context.Background()
	repo, err := Open(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close(ctx)

	saved, err := repo.Save(ctx, post.New("T", "C"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(saved.ID) != 5 {
		t.Errorf("len(ID) = %d, want 5", len(saved.ID))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "cassandra"

	_, err := Open(context.Background(), cfg, quietLogger())
	if !errors.Is(err, store.ErrUnknownDriver) {
		t.Errorf("Open() error = %v, want ErrUnknownDriver", err)
	}
}

func TestOpenUnreachableMongo(t *testing.T) {
	cfg := config.Default()
	cfg.Store.URI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Open(ctx, cfg, quietLogger())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Open() error = %v, want ErrUnavailable", err)
	}
}
