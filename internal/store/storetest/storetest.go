// Package storetest provides a behavioural test suite that every
// store.Repository implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) store.Repository

// Run executes the repository contract against repositories from newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("empty store lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		all, err := repo.FindAll(context.Background())
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("FindAll() returned %d posts, want 0", len(all))
		}
	})

	t.Run("save assigns id and create date", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		before := time.Now().Add(-time.Second)

		saved, err := repo.Save(ctx, post.New("A", "B"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if saved.ID == "" {
			t.Fatal("Save() did not assign an ID")
		}
		if saved.CreateDate == nil {
			t.Fatal("Save() did not assign a CreateDate")
		}
		if saved.CreateDate.Before(before) || saved.CreateDate.After(time.Now().Add(time.Second)) {
			t.Errorf("CreateDate = %v, want around now", saved.CreateDate)
		}
		if saved.Title != "A" || saved.Content != "B" {
			t.Errorf("saved = %q/%q, want A/B", saved.Title, saved.Content)
		}

		got, err := repo.FindByID(ctx, saved.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if !got.Equal(saved) {
			t.Errorf("FindByID() = %+v, want %+v", got, saved)
		}
	})

	t.Run("save generates distinct ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seen := make(map[string]bool)
		for i := 0; i < 5; i++ {
			saved, err := repo.Save(ctx, post.New("T", "C"))
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if seen[saved.ID] {
				t.Fatalf("duplicate id %q", saved.ID)
			}
			seen[saved.ID] = true
		}
	})

	t.Run("save existing overwrites and keeps create date", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, post.New("Old", "Old body"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		changed := saved.Clone()
		changed.Apply(post.Input{Title: "New", Content: "New body"})
		updated, err := repo.Save(ctx, changed)
		if err != nil {
			t.Fatalf("Save() update error = %v", err)
		}
		if updated.ID != saved.ID {
			t.Errorf("ID = %q, want %q", updated.ID, saved.ID)
		}
		if !updated.CreateDate.Equal(*saved.CreateDate) {
			t.Errorf("CreateDate = %v, want %v", updated.CreateDate, saved.CreateDate)
		}

		got, err := repo.FindByID(ctx, saved.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Title != "New" || got.Content != "New body" {
			t.Errorf("stored = %q/%q, want New/New body", got.Title, got.Content)
		}
		if !got.CreateDate.Equal(*saved.CreateDate) {
			t.Errorf("stored CreateDate = %v, want %v", got.CreateDate, saved.CreateDate)
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("FindAll() returned %d posts, want 1", len(all))
		}
	})

	t.Run("find missing id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(context.Background(), "missing-id")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete existing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, post.New("A", "B"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := repo.DeleteByID(ctx, saved.ID); err != nil {
			t.Fatalf("DeleteByID() error = %v", err)
		}
		if _, err := repo.FindByID(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete missing id leaves store unchanged", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Save(ctx, post.New("A", "B")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := repo.DeleteByID(ctx, "missing-id"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("DeleteByID() error = %v, want ErrNotFound", err)
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("FindAll() returned %d posts, want 1", len(all))
		}
	})

	t.Run("count tracks creates minus deletes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"one", "two", "three", "four"} {
			saved, err := repo.Save(ctx, post.New(title, "content of "+title))
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			ids = append(ids, saved.ID)
		}
		for _, id := range ids[:2] {
			if err := repo.DeleteByID(ctx, id); err != nil {
				t.Fatalf("DeleteByID() error = %v", err)
			}
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("FindAll() returned %d posts, want 2", len(all))
		}
	})

	t.Run("delete all", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if _, err := repo.Save(ctx, post.New("T", "C")); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
		if err := repo.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("FindAll() returned %d posts, want 0", len(all))
		}

		// Deleting from an empty store is not an error.
		if err := repo.DeleteAll(ctx); err != nil {
			t.Errorf("DeleteAll() on empty store error = %v", err)
		}
	})

	t.Run("returned posts are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, post.New("A", "B"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		saved.Title = "mutated by caller"

		got, err := repo.FindByID(ctx, saved.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Title != "A" {
			t.Errorf("Title = %q, want A", got.Title)
		}
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
