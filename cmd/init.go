package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/config"
	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/store/filestore"
	"github.com/hmans/posts/internal/ui"
)

var (
	initForce bool
	initJSON  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a " + config.ConfigFile + " in the current directory",
	Long: `Writes the effective configuration (defaults, POSTS_* environment
variables and --driver) to ` + config.ConfigFile + ` in the current directory.
With the file driver the posts directory is created as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return cmdError(initJSON, output.ErrStore, "%v", err)
		}

		dataDir, err := initProject(cmd.Context(), dir, cfg, initForce)
		if err != nil {
			return cmdError(initJSON, output.ErrValidation, "init failed: %v", err)
		}

		msg := "Initialized " + cfg.Path()
		if dataDir != "" {
			msg += " (posts in " + dataDir + ")"
		}
		if initJSON {
			return output.SuccessMessage(msg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Render(msg))
		return nil
	},
}

// initProject saves c as dir's config file and prepares the file store
// directory. It returns that directory, or "" for other drivers.
func initProject(ctx context.Context, dir string, c *config.Config, force bool) (string, error) {
	path := filepath.Join(dir, config.ConfigFile)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := c.Save(path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	if c.Store.Driver != "file" {
		return "", nil
	}

	s, err := filestore.Open(c.ResolvePath(), logger)
	if err != nil {
		return "", err
	}
	defer s.Close(ctx)
	return s.Root(), nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(initCmd)
}
