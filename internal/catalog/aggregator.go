// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"buttonshop/internal/colors"
	"buttonshop/internal/models"
)

// ButtonSource provides batched button facts keyed by category id. Every
// method answers for all requested categories in a single query.
type ButtonSource interface {
	CountActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int, error)
	ImagesByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	ColorsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]colors.ItemColors, error)
}

// Summary is the display metadata of one category card.
type Summary struct {
	SubcategoryCount int    `json:"subcategory_count"`
	ButtonCount      int    `json:"button_count"`
	PreviewImage     string `json:"preview_image"`
}

// Card is a category as rendered in a listing.
type Card struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Slug   string      `json:"slug"`
	Href   string      `json:"href"`
	Colors colors.Pair `json:"colors"`
	Summary
}

// Aggregator computes per-category metadata on top of a Tree.
type Aggregator struct {
	buttons ButtonSource
	colors  *colors.Aggregator
	pick    func(n int) int
}

// NewAggregator returns an Aggregator. pick chooses a preview index in
// [0, n); nil selects uniformly at random.
func NewAggregator(buttons ButtonSource, colorAgg *colors.Aggregator, pick func(n int) int) *Aggregator {
	if colorAgg == nil {
		colorAgg = colors.NewAggregator(0, 0, 0)
	}
	if pick == nil {
		pick = rand.IntN
	}
	return &Aggregator{buttons: buttons, colors: colorAgg, pick: pick}
}

// FilterIDs returns id and all of its descendants, for listing the buttons
// of a whole subtree.
func FilterIDs(tree *Tree, id uuid.UUID) []uuid.UUID {
	return append([]uuid.UUID{id}, tree.DescendantIDs(id)...)
}

// withDescendants returns ids plus every descendant of each, deduplicated,
// along with the descendant list of each requested id.
func withDescendants(tree *Tree, ids []uuid.UUID) ([]uuid.UUID, map[uuid.UUID][]uuid.UUID) {
	seen := make(map[uuid.UUID]bool)
	var all []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			all = append(all, id)
		}
	}

	descendants := make(map[uuid.UUID][]uuid.UUID, len(ids))
	for _, id := range ids {
		add(id)
		desc := tree.DescendantIDs(id)
		descendants[id] = desc
		for _, d := range desc {
			add(d)
		}
	}
	return all, descendants
}

// Summaries computes subcategory count, direct button count and a preview
// image for each id. The preview is a random direct button image, else a
// random image from anywhere in the subtree, else empty.
func (a *Aggregator) Summaries(ctx context.Context, tree *Tree, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	result := make(map[uuid.UUID]Summary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	counts, err := a.buttons.CountActiveByCategories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count buttons: %w", err)
	}

	all, descendants := withDescendants(tree, ids)
	images, err := a.buttons.ImagesByCategories(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("load button images: %w", err)
	}

	for _, id := range ids {
		s := Summary{
			SubcategoryCount: len(tree.Children(id)),
			ButtonCount:      counts[id],
		}

		pool := images[id]
		if len(pool) == 0 {
			for _, d := range descendants[id] {
				pool = append(pool, images[d]...)
			}
		}
		if len(pool) > 0 {
			s.PreviewImage = pool[a.pick(len(pool))]
		}
		result[id] = s
	}
	return result, nil
}

// ThemeColors returns the display colors for each id. Explicit category
// colors win; missing ones come from the category's own buttons, then from
// the buttons of its whole subtree, then from the nearest ancestor with
// explicit colors, then from the defaults.
func (a *Aggregator) ThemeColors(ctx context.Context, tree *Tree, ids []uuid.UUID) (map[uuid.UUID]colors.Pair, error) {
	result := make(map[uuid.UUID]colors.Pair, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	all, descendants := withDescendants(tree, ids)
	items, err := a.buttons.ColorsByCategories(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("load button colors: %w", err)
	}

	direct := a.colors.GroupColorsBatch(items)
	byCategory := make(map[uuid.UUID][]colors.ItemColors)
	for _, it := range items {
		byCategory[it.GroupID] = append(byCategory[it.GroupID], it)
	}

	for _, id := range ids {
		cwa := tree.WithAncestors(id)
		if cwa == nil {
			result[id] = colors.DefaultPair()
			continue
		}

		derived, ok := direct[id]
		if !ok {
			var dominants, accents []string
			for _, d := range descendants[id] {
				for _, it := range byCategory[d] {
					if it.Dominant == "" {
						continue
					}
					dominants = append(dominants, it.Dominant)
					if it.Accent != "" {
						accents = append(accents, it.Accent)
					}
				}
			}
			if pair := a.colors.GroupColors(dominants, accents); pair != nil {
				derived, ok = *pair, true
			}
		}

		if !ok {
			result[id] = EffectiveColors(cwa)
			continue
		}
		if c := cwa.Category.PrimaryColor; c != nil && *c != "" {
			derived.Primary = *c
		}
		if c := cwa.Category.SecondaryColor; c != nil && *c != "" {
			derived.Secondary = *c
		}
		result[id] = derived
	}
	return result, nil
}

// Cards builds listing cards for the given categories.
func (a *Aggregator) Cards(ctx context.Context, tree *Tree, categories []models.Category) ([]Card, error) {
	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	summaries, err := a.Summaries(ctx, tree, ids)
	if err != nil {
		return nil, err
	}
	themes, err := a.ThemeColors(ctx, tree, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(categories))
	for _, c := range categories {
		cards = append(cards, Card{
			ID:      c.ID,
			Name:    c.Name,
			Slug:    c.Slug,
			Href:    tree.Href(c.ID),
			Colors:  themes[c.ID],
			Summary: summaries[c.ID],
		})
	}
	return cards, nil
}
