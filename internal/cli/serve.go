package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sport_bet/internal/config"
	"sport_bet/internal/routes"
	"sport_bet/internal/session"
	"sport_bet/internal/views"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log := a.log

	log.Info("starting server", slog.String("env", cfg.Env))

	if cfg.Env == config.EnvProd && cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("session_secret is the development default, sessions can be forged")
	}

	storage, err := a.openStorage()
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := storage.Migrate(); err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	log.Info("database init", slog.String("driver", cfg.Database.Driver))

	renderer, err := views.New()
	if err != nil {
		return err
	}

	sessions := session.NewManager(cfg.SessionSecret, cfg.HTTPServer.SecureCookies)

	r := routes.SetupRouter(log, storage, sessions, renderer, cfg.BcryptCost)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		log.Info("listening", slog.String("address", cfg.Address))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("shutting down", slog.String("signal", sig.String()))

	case <-ctx.Done():
		log.Info("shutting down", slog.String("reason", ctx.Err().Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown error", slog.String("error", err.Error()))
		if err := server.Close(); err != nil {
			log.Error("force shutdown error", slog.String("error", err.Error()))
		}
	}

	log.Info("server stopped")

	return nil
}
