package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive TUI",
	Long:  `Opens an interactive terminal user interface for browsing and deleting posts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), resolver)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
