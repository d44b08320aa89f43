package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/graph/model"
	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
	"github.com/hmans/posts/internal/ui"
)

var (
	updateTitle       string
	updateContent     string
	updateContentFile string
	updateJSON        bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a post's title or content",
	Long: `Updates an existing post through the updatePost mutation.

Fields that are not given keep their current value:
  --title          Change the title
  --content        Change the content (use '-' to read from stdin)
  --content-file   Read the new content from a file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var changes postChanges
		if cmd.Flags().Changed("title") {
			changes.title = &updateTitle
		}
		if cmd.Flags().Changed("content") || cmd.Flags().Changed("content-file") {
			content, err := resolveContent(updateContent, updateContentFile, cmd.InOrStdin())
			if err != nil {
				return cmdError(updateJSON, output.ErrValidation, "%s", err)
			}
			changes.content = &content
		}

		if changes.empty() {
			return cmdError(updateJSON, output.ErrValidation, "no changes specified (use --title, --content or --content-file)")
		}

		p, err := updatePost(cmd.Context(), args[0], changes)
		if err != nil {
			return cmdError(updateJSON, errorCode(err), "failed to update post: %v", err)
		}

		if updateJSON {
			return output.Success(p, "Post updated")
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Render("Updated ")+ui.ID.Render(p.ID)+" "+ui.Muted.Render(strings.Join(changes.names(), ", ")))
		return nil
	},
}

// postChanges holds the fields given on the command line.
type postChanges struct {
	title   *string
	content *string
}

func (c postChanges) empty() bool {
	return c.title == nil && c.content == nil
}

func (c postChanges) names() []string {
	var names []string
	if c.title != nil {
		names = append(names, "title")
	}
	if c.content != nil {
		names = append(names, "content")
	}
	return names
}

// updatePost fills in unchanged fields from the stored post, since the
// mutation replaces both.
func updatePost(ctx context.Context, id string, c postChanges) (*post.Post, error) {
	current, err := resolver.Query().Post(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("post %s not found: %w", id, store.ErrNotFound)
	}

	input := model.PostInput{Title: current.Title, Content: current.Content}
	if c.title != nil {
		input.Title = *c.title
	}
	if c.content != nil {
		input.Content = *c.content
	}
	return resolver.Mutation().UpdatePost(ctx, id, input)
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateContent, "content", "c", "", "New content (use '-' to read from stdin)")
	updateCmd.Flags().StringVar(&updateContentFile, "content-file", "", "Read new content from file")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "Output as JSON")
	updateCmd.MarkFlagsMutuallyExclusive("content", "content-file")
	rootCmd.AddCommand(updateCmd)
}
