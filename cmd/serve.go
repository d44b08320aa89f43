package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hmans/posts/internal/ctxlog"
	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/graph"
	"github.com/hmans/posts/internal/seed"
	"github.com/hmans/posts/internal/store"
)

var (
	servePort int
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the GraphQL server",
	Long: `Start an HTTP server that serves the GraphQL API.

The server exposes:
  - GraphQL endpoint at /graphql (POST, GET with ?query=)
  - GraphQL subscriptions at /graphql (websocket)
  - GraphQL Playground at /graphql (GET) for interactive queries
  - Health check at /healthz

Examples:
  # Start server on the configured port (default 8080)
  posts serve

  # Start server on a custom port and load the sample posts
  posts serve --port 3000 --seed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if serveSeed {
			cfg.Seed = true
		}
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed {
		if _, err := seed.Run(ctx, repo, logger); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	events := event.NewBroker()
	defer events.Close()
	resolver.Events = events

	// Changes made to the file store by other processes become events too.
	if w, ok := repo.(store.Watcher); ok {
		if err := w.Watch(events.Publish); err != nil {
			return fmt.Errorf("watching store: %w", err)
		}
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(resolver, repo, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr, "driver", cfg.Store.Driver)
		fmt.Printf("GraphQL Playground: http://localhost:%d/graphql\n", cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped")
	}

	return nil
}

// newRouter wires the GraphQL endpoint, the playground and the health check.
func newRouter(r *graph.Resolver, repo store.Repository, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	gql := graph.NewHandler(r)
	play := playground.Handler("Posts GraphQL", "/graphql")

	router.Any("/graphql", func(c *gin.Context) {
		switch {
		case isWebsocket(c.Request):
			// Server timeouts must not end long-lived subscriptions.
			rc := http.NewResponseController(c.Writer)
			_ = rc.SetReadDeadline(time.Time{})
			_ = rc.SetWriteDeadline(time.Time{})
		case showPlayground(c.Request):
			play.ServeHTTP(c.Writer, c.Request)
			return
		}
		gql.ServeHTTP(c.Writer, c.Request)
	})

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repo.Ping(ctx); err != nil {
			ctxlog.FromContext(c.Request.Context()).Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// showPlayground reports whether a request is a browser visit rather than a
// GET query or a websocket upgrade.
func showPlayground(req *http.Request) bool {
	return req.Method == http.MethodGet &&
		req.URL.Query().Get("query") == "" &&
		!isWebsocket(req)
}

func isWebsocket(req *http.Request) bool {
	return strings.EqualFold(req.Header.Get("Upgrade"), "websocket")
}

// requestLogger puts a request-scoped logger into the request context and
// logs each request once it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		reqLogger.Info("request",
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Replace all posts with the sample posts on start")
	rootCmd.AddCommand(serveCmd)
}
