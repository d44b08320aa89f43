// Package seed resets the post collection to a fixed pair of posts.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Titles are the titles of the seeded posts, in insertion order.
var Titles = []string{"Post one", "Post two"}

// Content returns the body a seeded post with the given title receives.
func Content(title string) string {
	return "Content of " + title
}

// Run deletes every post in repo and saves one post per entry of Titles.
// It returns the saved posts.
func Run(ctx context.Context, repo store.Repository, logger *slog.Logger) ([]*post.Post, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := repo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clearing posts: %w", err)
	}

	saved := make([]*post.Post, 0, len(Titles))
	for _, title := range Titles {
		p, err := repo.Save(ctx, post.New(title, Content(title)))
		if err != nil {
			return saved, fmt.Errorf("saving %q: %w", title, err)
		}
		logger.Info("seeded post", "id", p.ID, "title", p.Title, "createDate", p.FormatCreateDate())
		saved = append(saved, p)
	}

	return saved, nil
}
