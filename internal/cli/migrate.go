package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"journal-backend/internal/infrastructure/db"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config.DB.URL == "" {
				return errors.New("db.url is required")
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, app.Config.DB.URL, db.PoolConfigFrom(app.Config.DB))
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			app.Logger.Info("schema migrated")
			return nil
		},
	}
}
