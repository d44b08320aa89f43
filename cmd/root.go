// Package cmd implements the posts command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/backend"
	"github.com/hmans/posts/internal/config"
	"github.com/hmans/posts/internal/ctxlog"
	"github.com/hmans/posts/internal/graph"
	"github.com/hmans/posts/internal/store"
)

var (
	repo     store.Repository
	resolver *graph.Resolver
	cfg      *config.Config
	logger   *slog.Logger

	configPath  string
	storeDriver string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "posts",
	Short: "A GraphQL API for posts",
	Long: `Posts stores titled posts in a document store and serves them over a
GraphQL API. The same queries and mutations are available from the command
line.

Storage is selected in .posts.yml (searched upward from the working
directory) or with POSTS_* environment variables. Supported drivers: mongo
(default), file, sqlite and postgres.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		logger = ctxlog.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(logger)

		if !needsStore(cmd) {
			return nil
		}

		logger.Debug("opening store", "driver", cfg.Store.Driver, "uri", cfg.Store.Redacted())
		repo, err = backend.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
		}
		resolver = &graph.Resolver{Repo: repo, Logger: logger}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo == nil {
			return nil
		}
		return repo.Close(context.Background())
	},
}

// loadConfig reads --config or the nearest .posts.yml, then applies flag
// and environment overrides.
func loadConfig() (*config.Config, error) {
	var (
		c   *config.Config
		err error
	)
	if configPath != "" {
		c, err = config.Load(configPath)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, err
		}
		c, err = config.LoadFromDirectory(wd)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if storeDriver != "" {
		c.Store.Driver = storeDriver
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	c.ApplyDriverDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// needsStore reports whether cmd talks to the store.
func needsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete", "init":
		return false
	case "graphql":
		return !querySchemaOnly
	}
	return true
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: nearest "+config.ConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", "", "Store driver (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
