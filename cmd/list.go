package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/ui"
)

var (
	listJSON  bool
	listQuiet bool
	listFull  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all posts",
	Long:    `Lists all posts, newest first.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := resolver.Query().Posts(cmd.Context())
		if err != nil {
			return cmdError(listJSON, errorCode(err), "failed to list posts: %v", err)
		}
		post.SortNewestFirst(posts)

		if listJSON {
			if !listFull {
				for _, p := range posts {
					p.Content = ""
				}
			}
			return output.SuccessMultiple(posts)
		}

		printPosts(cmd.OutOrStdout(), posts, listQuiet)
		return nil
	},
}

func printPosts(w io.Writer, posts []*post.Post, quiet bool) {
	// Quiet mode: just IDs
	if quiet {
		for _, p := range posts {
			fmt.Fprintln(w, p.ID)
		}
		return
	}

	if len(posts) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("No posts found. Create one with: posts create <title>"))
		return
	}

	maxIDWidth := 2 // minimum for "ID" header
	for _, p := range posts {
		maxIDWidth = max(maxIDWidth, len(p.ID))
	}
	maxIDWidth += 2 // padding

	idStyle := lipgloss.NewStyle().Width(maxIDWidth)
	dateStyle := lipgloss.NewStyle().Width(18)
	titleStyle := lipgloss.NewStyle()
	headerCol := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		idStyle.Render(headerCol.Render("ID")),
		dateStyle.Render(headerCol.Render("CREATED")),
		titleStyle.Render(headerCol.Render("TITLE")),
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, ui.Muted.Render(strings.Repeat("─", maxIDWidth+18+30)))

	for _, p := range posts {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idStyle.Render(ui.ID.Render(p.ID)),
			dateStyle.Render(ui.RenderDate(p.CreateDate)),
			titleStyle.Render(truncate(p.Title, 50)),
		)
		fmt.Fprintln(w, row)
	}
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "Only output IDs (one per line)")
	listCmd.Flags().BoolVar(&listFull, "full", false, "Include post content in JSON output")
	listCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.AddCommand(listCmd)
}
