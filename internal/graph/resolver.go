package graph

import (
	"context"
	"log/slog"

	"github.com/hmans/posts/internal/ctxlog"
	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Resolver is the root resolver for the GraphQL schema.
// It holds the repository every operation passes through and the broker
// change events are published on.
type Resolver struct {
	Repo   store.Repository
	Events *event.Broker
	Logger *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// log returns the request logger, or r.Logger outside a request.
func (r *Resolver) log(ctx context.Context) *slog.Logger {
	return ctxlog.FromContextOr(ctx, r.logger())
}

func (r *Resolver) publish(t event.Type, id string, p *post.Post) {
	if r.Events == nil {
		return
	}
	r.Events.Publish([]event.Event{{Type: t, Post: p.Clone(), PostID: id}})
}
