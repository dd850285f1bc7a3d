package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/analytics"
	"github.com/oakmere/storequery/internal/catalog"
	"github.com/oakmere/storequery/internal/config"
	"github.com/oakmere/storequery/internal/conversation"
	"github.com/oakmere/storequery/internal/httpapi"
	"github.com/oakmere/storequery/internal/logging"
	"github.com/oakmere/storequery/internal/order"
	"github.com/oakmere/storequery/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the storequery HTTP server.

Configuration is read from the --config file when given, then overridden by
STOREQUERY_* environment variables. Defaults serve on localhost:8080 with a
storequery.db database in the working directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting storequeryd",
		zap.String("version", version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("db", cfg.Storage.Path),
	)

	store, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	srv, err := httpapi.NewServer(httpapi.Services{
		Catalog:      catalog.NewService(store, logger),
		Conversation: conversation.NewService(store, logger),
		Order:        order.NewService(store, logger),
		Analytics:    analytics.NewService(store, logger),
	}, logger, cfg)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
