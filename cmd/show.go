package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/ui"
)

var (
	showJSON        bool
	showRaw         bool
	showContentOnly bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post",
	Long:  `Displays a post: its id, creation date, title and markdown-rendered content.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolver.Query().Post(cmd.Context(), args[0])
		if err != nil {
			return cmdError(showJSON, errorCode(err), "failed to find post: %v", err)
		}
		if p == nil {
			return cmdError(showJSON, output.ErrNotFound, "post %s not found", args[0])
		}

		if showJSON {
			return output.Success(p, "")
		}
		return showPost(cmd.OutOrStdout(), p)
	},
}

func showPost(w io.Writer, p *post.Post) error {
	// Raw markdown output (front matter + content)
	if showRaw {
		content, err := p.Render()
		if err != nil {
			return fmt.Errorf("failed to render post: %w", err)
		}
		_, err = w.Write(content)
		return err
	}

	if showContentOnly {
		_, err := fmt.Fprint(w, p.Content)
		return err
	}

	var header strings.Builder
	header.WriteString(ui.ID.Render(p.ID))
	header.WriteString("  ")
	header.WriteString(ui.RenderDate(p.CreateDate))
	header.WriteString("\n")
	header.WriteString(ui.Title.Render(p.Title))
	header.WriteString("\n")
	header.WriteString(ui.Muted.Render(strings.Repeat("─", 50)))

	fmt.Fprintln(w, lipgloss.NewStyle().MarginBottom(1).Render(header.String()))

	if p.Content == "" {
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := renderer.Render(p.Content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = fmt.Fprint(w, rendered)
	return err
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Output raw markdown with front matter")
	showCmd.Flags().BoolVar(&showContentOnly, "content-only", false, "Output only the content")
	showCmd.MarkFlagsMutuallyExclusive("json", "raw", "content-only")
	rootCmd.AddCommand(showCmd)
}
