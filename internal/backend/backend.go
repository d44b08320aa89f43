// Package backend opens the store.Repository named by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hmans/posts/internal/config"
	"github.com/hmans/posts/internal/store"
	"github.com/hmans/posts/internal/store/filestore"
	"github.com/hmans/posts/internal/store/mongostore"
	"github.com/hmans/posts/internal/store/pgstore"
	"github.com/hmans/posts/internal/store/sqlstore"
)

// Drivers lists the supported store drivers.
var Drivers = []string{filestore.Driver, mongostore.Driver, sqlstore.Driver, pgstore.Driver}

// Open connects to the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sc := cfg.Store

	switch sc.Driver {
	case filestore.Driver:
		s, err := filestore.Open(cfg.ResolvePath(), logger)
		if err != nil {
			return nil, err
		}
		s.SetIDLength(sc.IDLength)
		return s, nil

	case mongostore.Driver:
		return mongostore.Open(ctx, sc.URI, sc.Database, sc.Collection, logger)

	case sqlstore.Driver:
		path := cfg.ResolvePath()
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "posts.db")
		}
		return sqlstore.Open(ctx, path, logger)

	case pgstore.Driver:
		return pgstore.Open(ctx, sc.URI, logger)

	default:
		return nil, fmt.Errorf("%w %q (want one of %v)", store.ErrUnknownDriver, sc.Driver, Drivers)
	}
}
