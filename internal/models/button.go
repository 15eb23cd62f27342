// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Button is a catalog item. The stored Price is informational only;
// checkout charges the quantity-tiered unit price across the whole cart.
// DominantColor and AccentColor are derived from the image when it is
// uploaded and may be nil until the color backfill has run.
type Button struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"is_active"`
	ImageURL      string          `json:"image_url"`
	DominantColor *string         `json:"dominant_color,omitempty"`
	AccentColor   *string         `json:"accent_color,omitempty"`
	SortOrder     int             `json:"sort_order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsUncategorized reports whether the button has no category.
func (b *Button) IsUncategorized() bool {
	return b.CategoryID == nil
}

// HasColors reports whether both derived colors are present.
func (b *Button) HasColors() bool {
	return b.DominantColor != nil && *b.DominantColor != "" &&
		b.AccentColor != nil && *b.AccentColor != ""
}
