// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cli implements the buttonshop command line: the API server and
// the maintenance commands that share its configuration.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"buttonshop/internal/cache"
	"buttonshop/internal/config"
	"buttonshop/internal/database"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "buttonshop",
	Short: "Custom button shop catalog server and tools",
	Long: `buttonshop serves the catalog, pricing and custom-order API of the
button shop, and provides the commands to migrate and seed its database and
to derive button colors from their images.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
		setupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogger installs the default slog logger: text output, debug level
// in development and info otherwise.
func setupLogger(c *config.Config) {
	level := slog.LevelInfo
	if c.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openDB connects to PostgreSQL using the loaded configuration.
func openDB() (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// openCatalogCache connects to Valkey. The catalog cache is optional: when
// Valkey is unreachable a warning is logged and a nil cache is returned,
// which disables caching.
func openCatalogCache() (*cache.CatalogCache, func()) {
	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, catalog cache disabled", "error", err)
		return nil, func() {}
	}
	return cache.NewCatalogCache(client, cache.DefaultCatalogTTL), func() { closeValkey(client) }
}

func closeValkey(client *redis.Client) {
	if err := client.Close(); err != nil {
		slog.Warn("close valkey", "error", err)
	}
}
