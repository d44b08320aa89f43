package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/seed"
	"github.com/hmans/posts/internal/ui"
)

var seedJSON bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all posts with the sample posts",
	Long: `Deletes every stored post, then saves the sample posts:
` + fmt.Sprintf("%q", seed.Titles),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := seed.Run(cmd.Context(), repo, logger)
		if err != nil {
			return cmdError(seedJSON, errorCode(err), "seeding failed: %v", err)
		}

		if seedJSON {
			return output.SuccessMultiple(posts)
		}
		for _, p := range posts {
			printCreated(cmd.OutOrStdout(), p)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(fmt.Sprintf("Seeded %d post(s)", len(posts))))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(seedCmd)
}
