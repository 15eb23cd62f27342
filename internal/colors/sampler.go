// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package colors

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"math"

	_ "github.com/gen2brain/avif" // register AVIF decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// sampleSize is the edge of the square canvas images are reduced to
	// before any statistics are computed.
	sampleSize = 100

	// maxImagePixels caps decoded image size to prevent memory bombs.
	maxImagePixels = 100_000_000

	bucketWidth        = 32
	bucketSignificance = 0.05
	accentShift        = 60
	accentStdMin       = 30
	accentMinDistance  = 50
	accentContrast     = 80
)

// errNoUsableColor means every sampled pixel was neutral.
var errNoUsableColor = errors.New("image has no non-neutral pixels")

// Sample is the pair of colors derived from one button image.
type Sample struct {
	Dominant string `json:"dominant_color"`
	Accent   string `json:"accent_color"`
}

// FallbackSample is returned whenever extraction fails.
func FallbackSample() Sample {
	return Sample{Dominant: DefaultPrimary, Accent: DefaultSecondary}
}

// Sampler extracts a dominant and a contrasting accent color from images.
// It holds no state between calls and is safe for concurrent use.
type Sampler struct{}

// NewSampler returns a Sampler.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Extract decodes an encoded image (PNG, JPEG, GIF, WebP or AVIF) and
// derives its colors. It never fails: any problem is logged and the
// fallback pair is returned, so callers can always persist a result.
func (s *Sampler) Extract(data []byte) (sample Sample) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("color extraction panicked", "error", rec)
			sample = FallbackSample()
		}
	}()

	img, err := decode(data)
	if err == nil {
		sample, err = s.ExtractImage(img)
	}
	if err != nil {
		slog.Warn("color extraction failed, using fallback", "error", err)
		return FallbackSample()
	}
	return sample
}

// ExtractImage derives colors from a decoded image. Unlike Extract it
// reports failures to the caller.
func (s *Sampler) ExtractImage(img image.Image) (Sample, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return Sample{}, errors.New("image has no pixels")
	}

	// Composite onto white so transparent regions read as background.
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	small := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), flat, flat.Bounds(), draw.Src, nil)

	pixels := rgbPixels(small)
	mean, std := channelStats(pixels)

	dominant := mean.Round()
	if IsNeutral(dominant, samplerGraySpread) {
		mode, counted, significant := histogramMode(pixels)
		// Every pixel is neutral. The rejected mean is not kept as a last
		// resort: a white, black or gray image maps to the fallback pair,
		// never to a neutral dominant color such as #808080.
		if counted == 0 {
			return Sample{}, errNoUsableColor
		}
		if significant {
			dominant = mode
		}
	}

	accent := accentFor(dominant, std)
	return Sample{Dominant: dominant.Hex(), Accent: accent.Hex()}, nil
}

// decode checks the image dimensions before fully decoding it.
func decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func rgbPixels(img *image.RGBA) []RGB {
	pixels := make([]RGB, 0, len(img.Pix)/4)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		pixels = append(pixels, RGB{
			R: float64(img.Pix[i]),
			G: float64(img.Pix[i+1]),
			B: float64(img.Pix[i+2]),
		})
	}
	return pixels
}

// channelStats returns the per-channel mean and population standard
// deviation.
func channelStats(pixels []RGB) (mean RGB, std [3]float64) {
	n := float64(len(pixels))
	if n == 0 {
		return RGB{}, std
	}
	for _, p := range pixels {
		mean.R += p.R
		mean.G += p.G
		mean.B += p.B
	}
	mean = RGB{R: mean.R / n, G: mean.G / n, B: mean.B / n}

	var vr, vg, vb float64
	for _, p := range pixels {
		vr += (p.R - mean.R) * (p.R - mean.R)
		vg += (p.G - mean.G) * (p.G - mean.G)
		vb += (p.B - mean.B) * (p.B - mean.B)
	}
	std = [3]float64{math.Sqrt(vr / n), math.Sqrt(vg / n), math.Sqrt(vb / n)}
	return mean, std
}

type bucket struct {
	count   int
	r, g, b float64
}

// histogramMode buckets non-neutral pixels into 32-wide cells per channel
// and returns the true-color average of the fullest cell. significant is
// false unless that cell holds more than 5% of all sampled pixels.
func histogramMode(pixels []RGB) (mode RGB, counted int, significant bool) {
	var buckets [512]bucket
	for _, p := range pixels {
		if IsNeutral(p, samplerGraySpread) {
			continue
		}
		idx := int(p.R)/bucketWidth<<6 | int(p.G)/bucketWidth<<3 | int(p.B)/bucketWidth
		buckets[idx].count++
		buckets[idx].r += p.R
		buckets[idx].g += p.G
		buckets[idx].b += p.B
		counted++
	}

	best := -1
	for i := range buckets {
		if buckets[i].count > 0 && (best < 0 || buckets[i].count > buckets[best].count) {
			best = i
		}
	}
	if best < 0 {
		return RGB{}, 0, false
	}

	b := buckets[best]
	n := float64(b.count)
	mode = RGB{R: b.r / n, G: b.g / n, B: b.b / n}.Round()
	return mode, counted, n > bucketSignificance*float64(len(pixels))
}

// accentFor manufactures a contrasting color from the dominant one by
// pushing the most varied channel away from the midpoint, or by rotating
// channels when the image is flat.
func accentFor(dominant RGB, std [3]float64) RGB {
	ch := 0
	for i := 1; i < 3; i++ {
		if std[i] > std[ch] {
			ch = i
		}
	}

	var accent RGB
	if std[ch] > accentStdMin {
		vals := [3]float64{dominant.R, dominant.G, dominant.B}
		if vals[ch] > 128 {
			vals[ch] -= accentShift
		} else {
			vals[ch] += accentShift
		}
		accent = RGB{R: vals[0], G: vals[1], B: vals[2]}.Clamp()
	} else {
		accent = RGB{R: dominant.G, G: dominant.B, B: dominant.R}
	}

	if Distance(accent, dominant) < accentMinDistance {
		accent = contrast(dominant, accentContrast)
	}
	return accent
}
