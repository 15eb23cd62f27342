// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"buttonshop/internal/colors"
	"buttonshop/internal/models"
	"buttonshop/internal/storage"
	"buttonshop/internal/store"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage button images",
}

var imageSetCmd = &cobra.Command{
	Use:   "set <button-id> <file>",
	Short: "Upload a new image for a button and derive its colors",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid button id %q", args[0])
		}
		data, err := readImageFile(args[1])
		if err != nil {
			return err
		}

		sc, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		if sc == nil {
			return errors.New("object storage is not configured (set S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY)")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		catalogCache, closeCache := openCatalogCache()
		defer closeCache()

		s := &imageSetter{
			buttons: store.NewButtonStore(db),
			objects: sc,
			sampler: colors.NewSampler(),
			cache:   catalogCache,
		}
		b, err := s.Set(cmd.Context(), id, args[1], data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (dominant %s, accent %s)\n",
			b.Name, b.ImageURL, *b.DominantColor, *b.AccentColor)
		return nil
	},
}

func init() {
	imageCmd.AddCommand(imageSetCmd)
	rootCmd.AddCommand(imageCmd)
}

func readImageFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// allowedImageTypes maps accepted content types to object key extensions.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// imageContentType sniffs the content type of an image. AVIF is not
// recognized by content sniffing, so it is taken from the file extension.
func imageContentType(filename string, data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if ct == "application/octet-stream" && strings.EqualFold(filepath.Ext(filename), ".avif") {
		ct = "image/avif"
	}
	if _, ok := allowedImageTypes[ct]; !ok {
		return "", fmt.Errorf("unsupported image type %s", ct)
	}
	return ct, nil
}

type imageButtons interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Button, error)
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL, dominant, accent string) error
}

type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	ExtractKey(rawURL string) (string, bool)
}

// imageSetter replaces a button image: upload, sample, persist, then
// remove the previous object if it lived in our bucket.
type imageSetter struct {
	buttons imageButtons
	objects objectStore
	sampler *colors.Sampler
	cache   cacheInvalidator
}

// Set uploads data as the new image of button id and returns the updated
// button.
func (s *imageSetter) Set(ctx context.Context, id uuid.UUID, filename string, data []byte) (*models.Button, error) {
	b, err := s.buttons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("button %s not found", id)
	}

	ct, err := imageContentType(filename, data)
	if err != nil {
		return nil, err
	}

	sample := s.sampler.Extract(data)

	key := "buttons/" + id.String() + "/" + uuid.NewString() + allowedImageTypes[ct]
	url, err := s.objects.Upload(ctx, key, ct, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	if err := s.buttons.UpdateImage(ctx, id, url, sample.Dominant, sample.Accent); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			slog.Warn("remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, err
	}

	if oldKey, ok := s.objects.ExtractKey(b.ImageURL); ok && oldKey != key {
		if err := s.objects.Delete(ctx, oldKey); err != nil {
			slog.Warn("remove previous button image", "key", oldKey, "error", err)
		}
	}

	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}

	slog.Info("button image updated", "button_id", id, "url", url, "dominant", sample.Dominant)
	b.ImageURL = url
	b.DominantColor = &sample.Dominant
	b.AccentColor = &sample.Accent
	return b, nil
}
