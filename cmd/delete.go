package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
	"github.com/hmans/posts/internal/ui"
)

var (
	forceDelete bool
	deleteJSON  bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a post",
	Long:    `Deletes a post through the deletePost mutation after confirmation (use -f to skip confirmation).`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := resolver.Query().Post(ctx, args[0])
		if err != nil {
			return cmdError(deleteJSON, errorCode(err), "failed to find post: %v", err)
		}
		if p == nil {
			return cmdError(deleteJSON, output.ErrNotFound, "post %s not found", args[0])
		}

		// JSON implies force (no prompts for machines)
		if !forceDelete && !deleteJSON {
			ok, err := confirmDelete(p, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warning.Render("Cancelled"))
				return nil
			}
		}

		if err := deletePost(ctx, p.ID); err != nil {
			return cmdError(deleteJSON, errorCode(err), "failed to delete post: %v", err)
		}

		if deleteJSON {
			return output.Success(p, "Post deleted")
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Danger.Render("Deleted ")+ui.ID.Render(p.ID))
		return nil
	},
}

func deletePost(ctx context.Context, id string) error {
	deleted, err := resolver.Mutation().DeletePost(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return fmt.Errorf("post %s not found: %w", id, store.ErrNotFound)
	}
	return nil
}

// confirmDelete asks for confirmation, with a huh prompt on a terminal and
// a plain y/N line otherwise.
func confirmDelete(p *post.Post, in io.Reader, out io.Writer) (bool, error) {
	prompt := fmt.Sprintf("Delete '%s' (%s)?", p.Title, p.ID)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var confirmed bool
		err := huh.NewConfirm().
			Title(prompt).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return false, err
		}
		return confirmed, nil
	}

	fmt.Fprint(out, prompt+" [y/N] ")
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func init() {
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Skip confirmation")
	deleteCmd.Flags().BoolVar(&deleteJSON, "json", false, "Output as JSON (implies --force)")
	rootCmd.AddCommand(deleteCmd)
}
