// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the catalog's category forest.
// Slugs are unique among siblings; a category's full path is the slug
// sequence from its root down to itself.
type Category struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	ParentID        *uuid.UUID `json:"parent_id"`
	SortOrder       int        `json:"sort_order"`
	IsActive        bool       `json:"is_active"`
	PrimaryColor    *string    `json:"primary_color,omitempty"`
	SecondaryColor  *string    `json:"secondary_color,omitempty"`
	BackgroundImage *string    `json:"background_image,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children    []Category `json:"children,omitempty"`
	Depth       int        `json:"depth"`
	ButtonCount int        `json:"button_count"`
}

// IsRoot reports whether the category has no parent reference.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryWithAncestors is a category plus its ancestor chain ordered from
// the root down to the immediate parent.
type CategoryWithAncestors struct {
	Category  Category   `json:"category"`
	Ancestors []Category `json:"ancestors"`
}

// Slugs returns the full slug path of the category.
func (c *CategoryWithAncestors) Slugs() []string {
	slugs := make([]string, 0, len(c.Ancestors)+1)
	for _, a := range c.Ancestors {
		slugs = append(slugs, a.Slug)
	}
	return append(slugs, c.Category.Slug)
}
