// Package cli wires configuration, storage and transports into commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"journal-backend/internal/config"
	"journal-backend/internal/logger"
)

// App holds what every command needs once flags are parsed.
type App struct {
	Config config.Config
	Logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	var (
		configPath string
		envOnly    bool
	)

	root := &cobra.Command{
		Use:           "journal-server",
		Short:         "Trading journal API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envOnly)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVar(&envOnly, "env-only", false, "read configuration from TJ_* environment variables only")

	serve := newServeCmd(app)
	root.AddCommand(serve, newMigrateCmd(app))
	root.RunE = serve.RunE

	return root
}
