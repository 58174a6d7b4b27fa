// Package cli wires configuration, storage and the HTTP server into the
// games command.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"sport_bet/internal/config"
	"sport_bet/internal/storage/sqldb"

	"github.com/spf13/cobra"
)

type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "games",
		Short:        "Sport Bet - list upcoming games and who posted them",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			a.cfg = cfg
			a.log = setupLogger(cfg.Env, cmd.ErrOrStderr())

			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $CONFIG_PATH, env only when unset)")

	root.AddCommand(
		newServeCmd(a),
		newInitDBCmd(a),
		newUserCmd(a),
	)

	return root
}

func (a *app) openStorage() (*sqldb.Storage, error) {
	storage, err := sqldb.New(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return storage, nil
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger
	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}
