// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"buttonshop/internal/colors"
	"buttonshop/internal/models"
	"buttonshop/internal/storage"
	"buttonshop/internal/store"
)

var recolorFlags struct {
	all     bool
	limit   int
	timeout time.Duration
	baseURL string
}

var recolorCmd = &cobra.Command{
	Use:   "recolor",
	Short: "Derive dominant and accent colors from button images",
	Long: `Samples the image of every button that has no colors yet (or of every
button with --all), stores the dominant and accent colors, and clears the
catalog cache. A button whose image cannot be fetched is logged and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sc, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}

		catalogCache, closeCache := openCatalogCache()
		defer closeCache()

		r := &recolorer{
			buttons: store.NewButtonStore(db),
			images:  newImageFetcher(sc, recolorFlags.baseURL),
			sampler: colors.NewSampler(),
			cache:   catalogCache,
			timeout: recolorFlags.timeout,
		}
		res, err := r.Run(cmd.Context(), recolorFlags.all, recolorFlags.limit)
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, updated %d, reused %d, failed %d\n",
			res.Scanned, res.Updated, res.Reused, res.Failed)
		return err
	},
}

func init() {
	f := recolorCmd.Flags()
	f.BoolVar(&recolorFlags.all, "all", false, "resample every button with an image, not only those missing colors")
	f.IntVar(&recolorFlags.limit, "limit", 1000, "maximum buttons to process when not using --all")
	f.DurationVar(&recolorFlags.timeout, "timeout", 15*time.Second, "time allowed to fetch one image")
	f.StringVar(&recolorFlags.baseURL, "base-url", "", "base URL for relative image paths")
	rootCmd.AddCommand(recolorCmd)
}

// recolorButtons is the button persistence the backfill needs.
type recolorButtons interface {
	ListMissingColors(ctx context.Context, limit int) ([]models.Button, error)
	ListAll(ctx context.Context) ([]models.Button, error)
	UpdateColors(ctx context.Context, id uuid.UUID, dominant, accent string) error
}

type imageSource interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type cacheInvalidator interface {
	InvalidateAll(ctx context.Context) int
}

// recolorer runs the color backfill.
type recolorer struct {
	buttons recolorButtons
	images  imageSource
	sampler *colors.Sampler
	cache   cacheInvalidator
	timeout time.Duration
}

// recolorResult counts what one backfill run did. Reused buttons shared an
// image URL with a button sampled earlier in the same run.
type recolorResult struct {
	Scanned int
	Updated int
	Reused  int
	Failed  int
}

// Run samples and stores colors for the selected buttons. Each image URL
// is fetched and sampled at most once per run. Per-button failures are
// logged and counted; only listing errors and cancellation abort the run.
// The catalog cache is cleared whenever at least one button changed.
func (r *recolorer) Run(ctx context.Context, all bool, limit int) (recolorResult, error) {
	var res recolorResult

	var buttons []models.Button
	var err error
	if all {
		buttons, err = r.buttons.ListAll(ctx)
	} else {
		buttons, err = r.buttons.ListMissingColors(ctx, limit)
	}
	if err != nil {
		return res, fmt.Errorf("list buttons: %w", err)
	}

	sampled := make(map[string]colors.Sample)
	unreachable := make(map[string]bool)

	defer func() {
		if res.Updated > 0 && r.cache != nil {
			r.cache.InvalidateAll(context.WithoutCancel(ctx))
		}
	}()

	for _, b := range buttons {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if b.ImageURL == "" {
			continue
		}
		res.Scanned++

		sample, seen := sampled[b.ImageURL]
		switch {
		case seen:
			res.Reused++
		case unreachable[b.ImageURL]:
			res.Failed++
			continue
		default:
			data, err := r.fetch(ctx, b.ImageURL)
			if err != nil {
				slog.Warn("recolor: image fetch failed", "button_id", b.ID, "url", b.ImageURL, "error", err)
				unreachable[b.ImageURL] = true
				res.Failed++
				continue
			}
			sample = r.sampler.Extract(data)
			sampled[b.ImageURL] = sample
		}

		if err := r.buttons.UpdateColors(ctx, b.ID, sample.Dominant, sample.Accent); err != nil {
			slog.Warn("recolor: update failed", "button_id", b.ID, "error", err)
			res.Failed++
			continue
		}
		res.Updated++
		slog.Debug("recolored button", "button_id", b.ID, "dominant", sample.Dominant, "accent", sample.Accent)
	}

	slog.Info("recolor finished",
		"scanned", res.Scanned,
		"updated", res.Updated,
		"reused", res.Reused,
		"failed", res.Failed,
	)
	return res, nil
}

func (r *recolorer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.images.Fetch(ctx, rawURL)
}
