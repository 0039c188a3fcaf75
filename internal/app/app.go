// Package app wires configuration, storage and the HTTP API into the
// socialcosmos command line.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialcosmos/backend/internal/config"
	"github.com/socialcosmos/backend/internal/handlers"
	"github.com/socialcosmos/backend/internal/httpserver"
	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/metrics"
	"github.com/socialcosmos/backend/internal/middleware"
)

// Run bootstraps the SocialCosmos backend application.
func Run(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the socialcosmos command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "socialcosmos",
		Short: "SocialCosmos social network backend",
		Long: `SocialCosmos serves accounts, posts, conversations, groups and the
friend graph over a JSON API.

Configuration is read from SOCIALCOSMOS_* environment variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand(), newMigrateCommand(), newSessionsCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(os.Stdout, cfg.LogLevel))
		},
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     logging.ParseLevel(level),
	}))
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	collector := metrics.NewCollector()

	deps, cleanup, err := buildDependencies(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := httpserver.New(cfg.AppPort, newHandler(deps, logger), logger)
	logger.Info("socialcosmos ready", "storage", cfg.Storage, "port", cfg.AppPort)
	return srv.Run(ctx)
}

// newHandler mounts the API routes behind the request logger.
func newHandler(deps handlers.Dependencies, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)
	return middleware.RequestLogger(logger, deps.Metrics)(mux)
}
