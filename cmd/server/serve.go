package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/handler"
	"confirm.durgadawaghar.com/internal/intake"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Pending migrations are applied on startup.

Examples:
  # Serve with settings from the environment or .env
  server serve

  # Override port and database
  server serve --port 9000 --db /var/lib/confirm/confirm.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	svc := intake.NewService(conn, logger, intake.Options{
		CacheSize:       cfg.CacheSize,
		CacheTTL:        cfg.CacheTTL,
		MaxMessageBytes: cfg.MaxMessageBytes,
	})
	h := handler.NewHandler(svc, conn, logger)

	// JSON escaping can grow a message up to six bytes per character
	maxBody := cfg.MaxMessageBytes*6 + 1024

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.NewRouter(h, logger, maxBody),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", "http://localhost"+srv.Addr),
			zap.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
