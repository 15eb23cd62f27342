// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"buttonshop/internal/catalog"
	"buttonshop/internal/database"
	"buttonshop/internal/handlers"
	"buttonshop/internal/middleware"
	"buttonshop/internal/router"
	"buttonshop/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Runs pending migrations, seeds sample data in development, and serves
the JSON API until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"price_tiers", len(cfg.Pricing.Tiers()),
	)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	catalogCache, closeCache := openCatalogCache()
	defer closeCache()

	categoryStore := store.NewCategoryStore(db)
	buttonStore := store.NewButtonStore(db)
	requestStore := store.NewCustomRequestStore(db)

	aggregator := catalog.NewAggregator(buttonStore, cfg.ColorAggregator(), nil)

	limiter := middleware.NewRateLimiter(cfg.WriteRateLimit, time.Minute, cfg.TrustProxy)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Catalog:  handlers.NewCatalog(categoryStore, buttonStore, aggregator, catalogCache),
		Shop:     handlers.NewShop(cfg.Pricing, buttonStore),
		Requests: handlers.NewRequests(requestStore, cfg.Pricing),
	}, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
