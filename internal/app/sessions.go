package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialcosmos/backend/internal/config"
	"github.com/socialcosmos/backend/internal/db"
	"github.com/socialcosmos/backend/internal/repositories"
)

func newSessionsCommand() *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain persisted login sessions",
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions whose refresh token has expired",
		Long: `Delete expired sessions from PostgreSQL. Sessions only persist with
the postgres storage backend; other backends keep them in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage != config.StoragePostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "%s storage keeps sessions in memory; nothing to prune\n", cfg.Storage)
				return nil
			}

			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DatabaseMaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			removed, err := repositories.NewPostgresSessionStore(pool).DeleteExpired(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 0, "only remove sessions expired for at least this long")

	sessions.AddCommand(prune)
	return sessions
}
