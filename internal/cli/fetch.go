// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"buttonshop/internal/storage"
)

// maxImageBytes caps a fetched image.
const maxImageBytes = 32 << 20

// imageFetcher loads button images for color sampling. Images stored in
// our bucket are read through the S3 API; anything else is fetched over
// HTTP. Relative URLs are resolved against baseURL when one is set.
type imageFetcher struct {
	storage *storage.Client // nil when object storage is not configured
	client  *http.Client
	baseURL string
}

func newImageFetcher(sc *storage.Client, baseURL string) *imageFetcher {
	return &imageFetcher{storage: sc, client: &http.Client{}, baseURL: baseURL}
}

// Fetch returns the raw bytes of the image at rawURL.
func (f *imageFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.storage != nil {
		if key, ok := f.storage.ExtractKey(rawURL); ok {
			return f.storage.Download(ctx, key)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse image url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		if f.baseURL == "" {
			return nil, fmt.Errorf("relative image url %q needs --base-url", rawURL)
		}
		base, err := url.Parse(f.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url %q: %w", f.baseURL, err)
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported image url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", u, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", u, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", u, maxImageBytes)
	}
	return data, nil
}
