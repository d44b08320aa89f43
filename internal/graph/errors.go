package graph

import (
	"context"
	"errors"
	"maps"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hmans/posts/internal/ctxlog"
	"github.com/hmans/posts/internal/store"
)

// Error codes reported in the "code" extension of GraphQL errors.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

// ErrorCode classifies a resolver error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, store.ErrUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// ErrorPresenter adds a code extension to every resolver error and logs
// failures that are not a plain "not found". The error passed in is left
// untouched; DefaultErrorPresenter hands *gqlerror.Error values back as is.
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	presented := graphql.DefaultErrorPresenter(ctx, err)
	if _, ok := presented.Extensions["code"]; ok {
		return presented
	}

	gqlErr := *presented
	gqlErr.Extensions = maps.Clone(presented.Extensions)
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]any{}
	}

	code := ErrorCode(err)
	gqlErr.Extensions["code"] = code
	if code != CodeNotFound {
		ctxlog.FromContext(ctx).Error("graphql error", "code", code, "path", gqlErr.Path.String(), "err", err)
	}
	return &gqlErr
}
