package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/app/config"
	"quill/app/feed"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/routes"
	"quill/app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog API server",
	RunE:  runServe,
}

var restoreFile string

func init() {
	serveCmd.Flags().StringVar(&restoreFile, "restore", "", "start from a backup taken at /api/admin/backup")
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = settings.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, restoreFile)
	if err != nil {
		return err
	}
	defer store.Close()

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	auth := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL)
	router := routes.SetupRoutes(routes.Deps{
		Store:     store,
		Auth:      auth,
		Feed:      feed.New(store, source, logger),
		Refresher: source,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore creates the store with the configured admin account as user 1,
// or loads it from a backup file.
func openStore(cfg *config.Config, restore string) (*repositories.Store, error) {
	if restore != "" {
		f, err := os.Open(restore)
		if err != nil {
			return nil, fmt.Errorf("open backup: %w", err)
		}
		defer f.Close()
		return repositories.RestoreStore(f)
	}

	hash, err := services.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return repositories.NewStore(repositories.Seed{
		Admin: &models.User{Username: cfg.AdminUsername, Password: hash, FullName: "Administrator"},
	})
}
