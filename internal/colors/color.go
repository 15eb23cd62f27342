// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package colors derives theme colors for the catalog. A Sampler pulls a
// dominant and an accent color out of a single button image; an Aggregator
// clusters the colors of many buttons into one primary/secondary pair per
// category.
package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default theme colors used whenever nothing better can be derived.
const (
	DefaultPrimary   = "#14b8a6" // teal
	DefaultSecondary = "#ec4899" // pink
)

// Neutral thresholds shared by the sampler and the aggregator. The gray
// spread differs between the two stages (30 vs 25); existing derived data
// depends on both values, so they must stay separate.
const (
	nearWhiteMin      = 240
	nearBlackMax      = 15
	samplerGraySpread = 30
	groupGraySpread   = 25
)

// Pair is a primary/secondary theme color pair in hex notation.
type Pair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// DefaultPair returns the hardcoded fallback theme.
func DefaultPair() Pair {
	return Pair{Primary: DefaultPrimary, Secondary: DefaultSecondary}
}

// RGB is a color with floating point channels in [0,255]. Channels are
// kept unrounded so running averages do not drift.
type RGB struct {
	R, G, B float64
}

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{
		R: float64(v >> 16 & 0xff),
		G: float64(v >> 8 & 0xff),
		B: float64(v & 0xff),
	}, true
}

// Hex formats the color as lowercase "#rrggbb", rounding and clamping
// each channel.
func (c RGB) Hex() string {
	r := c.Clamp().Round()
	return fmt.Sprintf("#%02x%02x%02x", int(r.R), int(r.G), int(r.B))
}

// Round rounds each channel to the nearest integer.
func (c RGB) Round() RGB {
	return RGB{R: math.Round(c.R), G: math.Round(c.G), B: math.Round(c.B)}
}

// Clamp limits each channel to [0,255].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B)}
}

// Shift adds delta to every channel and clamps the result.
func (c RGB) Shift(delta float64) RGB {
	return RGB{R: c.R + delta, G: c.G + delta, B: c.B + delta}.Clamp()
}

// Luminance returns the perceived brightness in [0,1].
func (c RGB) Luminance() float64 {
	return (0.299*c.R + 0.587*c.G + 0.114*c.B) / 255
}

// Spread is the difference between the largest and smallest channel.
func (c RGB) Spread() float64 {
	return math.Max(c.R, math.Max(c.G, c.B)) - math.Min(c.R, math.Min(c.G, c.B))
}

// Distance is the Euclidean distance between two colors in RGB space.
func Distance(a, b RGB) float64 {
	dr, dg, db := a.R-b.R, a.G-b.G, a.B-b.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// IsNeutral reports whether c is near white, near black, or a gray whose
// channel spread is below graySpread.
func IsNeutral(c RGB, graySpread float64) bool {
	if c.R > nearWhiteMin && c.G > nearWhiteMin && c.B > nearWhiteMin {
		return true
	}
	if c.R < nearBlackMax && c.G < nearBlackMax && c.B < nearBlackMax {
		return true
	}
	return c.Spread() < graySpread
}

// contrast darkens bright colors and lightens dark ones by amount.
func contrast(c RGB, amount float64) RGB {
	if c.Luminance() > 0.5 {
		return c.Shift(-amount)
	}
	return c.Shift(amount)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
