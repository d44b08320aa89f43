package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/graph/model"
	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/ui"
)

var (
	createContent     string
	createContentFile string
	createJSON        bool
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"c", "new"},
	Short:   "Create a new post",
	Long: `Creates a new post through the createPost mutation. The store assigns
the id and creation date.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := resolveContent(createContent, createContentFile, cmd.InOrStdin())
		if err != nil {
			return cmdError(createJSON, output.ErrValidation, "%s", err)
		}

		p, err := createPost(cmd.Context(), strings.Join(args, " "), content)
		if err != nil {
			return cmdError(createJSON, errorCode(err), "failed to create post: %v", err)
		}

		if createJSON {
			return output.Success(p, "Post created")
		}
		printCreated(cmd.OutOrStdout(), p)
		return nil
	},
}

func createPost(ctx context.Context, title, content string) (*post.Post, error) {
	return resolver.Mutation().CreatePost(ctx, model.PostInput{Title: title, Content: content})
}

func printCreated(w io.Writer, p *post.Post) {
	fmt.Fprintln(w, ui.Success.Render("Created ")+ui.ID.Render(p.ID)+" "+ui.Title.Render(p.Title))
}

func init() {
	createCmd.Flags().StringVarP(&createContent, "content", "c", "", "Post content (use '-' to read from stdin)")
	createCmd.Flags().StringVar(&createContentFile, "content-file", "", "Read content from file")
	createCmd.Flags().BoolVar(&createJSON, "json", false, "Output as JSON")
	createCmd.MarkFlagsMutuallyExclusive("content", "content-file")
	rootCmd.AddCommand(createCmd)
}
