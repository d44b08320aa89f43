package graph

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hmans/posts/internal/ctxlog"
	"github.com/hmans/posts/internal/store"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("post x: %w", store.ErrNotFound), CodeNotFound},
		{"unavailable", &store.ConnectionError{Op: "find", Driver: "mongo", Err: fmt.Errorf("refused")}, CodeStoreUnavailable},
		{"other", fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorPresenterLeavesInputUntouched(t *testing.T) {
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	t.Run("nil extensions", func(t *testing.T) {
		in := gqlerror.Errorf("boom")

		got := ErrorPresenter(ctx, in)
		if got == in {
			t.Fatal("ErrorPresenter() returned the input error")
		}
		if got.Extensions["code"] != CodeInternal {
			t.Errorf("code = %v, want %s", got.Extensions["code"], CodeInternal)
		}
		if in.Extensions != nil {
			t.Errorf("input extensions = %v, want nil", in.Extensions)
		}
		if got.Message != "boom" {
			t.Errorf("Message = %q", got.Message)
		}
	})

	t.Run("shared extensions", func(t *testing.T) {
		shared := map[string]any{"hint": "retry"}
		in := &gqlerror.Error{Message: "boom", Extensions: shared}

		got := ErrorPresenter(ctx, in)
		if got.Extensions["code"] != CodeInternal || got.Extensions["hint"] != "retry" {
			t.Errorf("extensions = %v", got.Extensions)
		}
		if _, ok := shared["code"]; ok {
			t.Errorf("input extensions were modified: %v", shared)
		}
	})

	t.Run("existing code kept", func(t *testing.T) {
		in := &gqlerror.Error{Message: "bad", Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"}}

		got := ErrorPresenter(ctx, in)
		if got.Extensions["code"] != "GRAPHQL_VALIDATION_FAILED" {
			t.Errorf("code = %v", got.Extensions["code"])
		}
	})
}

func TestErrorPresenterLogging(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog bool
	}{
		{"not found is quiet", fmt.Errorf("post x: %w", store.ErrNotFound), false},
		{"internal is logged", fmt.Errorf("disk full"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

			ErrorPresenter(ctx, tt.err)
			if got := strings.Contains(buf.String(), "graphql error"); got != tt.wantLog {
				t.Errorf("logged = %v, want %v (log %q)", got, tt.wantLog, buf.String())
			}
		})
	}
}
