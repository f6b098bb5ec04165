// Package main runs the confirmation server and its local parse tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/config"
	"confirm.durgadawaghar.com/internal/logging"
)

var (
	// port and dbPath override the environment when set
	port   int
	dbPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Payment confirmation server",
	Long: `Extracts one-time password, receiver account and debited amount from
payment confirmation messages and pairs them with pending payments.

Running without a subcommand starts the HTTP server.`,
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "HTTP server port (default from PORT)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default from DB_PATH)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if port != 0 {
		cfg.Port = port
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
