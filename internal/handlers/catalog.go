// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"buttonshop/internal/cache"
	"buttonshop/internal/catalog"
	"buttonshop/internal/colors"
	"buttonshop/internal/markdown"
	"buttonshop/internal/models"
	"buttonshop/internal/slug"
)

// buttonsSegment, following at least one category slug, turns a category
// path into its button listing.
const buttonsSegment = "buttons"

// CategoryLister loads every category, active or not. Inactive ones are
// still needed to walk the tree and pool descendant buttons.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// ButtonLister lists the active buttons of a set of categories.
type ButtonLister interface {
	ListActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Button, error)
}

// Catalog groups the read-only catalog endpoints. Responses are served
// from the Valkey catalog cache when possible and stored there on miss.
type Catalog struct {
	categories CategoryLister
	buttons    ButtonLister
	aggregator *catalog.Aggregator
	cache      *cache.CatalogCache
}

// NewCatalog creates the catalog handler group. cc may be nil to disable
// caching.
func NewCatalog(categories CategoryLister, buttons ButtonLister, aggregator *catalog.Aggregator, cc *cache.CatalogCache) *Catalog {
	return &Catalog{
		categories: categories,
		buttons:    buttons,
		aggregator: aggregator,
		cache:      cc,
	}
}

// categoryPage is the response for a single resolved category.
type categoryPage struct {
	Category        models.Category      `json:"category"`
	DescriptionHTML string               `json:"description_html"`
	Href            string               `json:"href"`
	Breadcrumbs     []catalog.Breadcrumb `json:"breadcrumbs"`
	Colors          colors.Pair          `json:"colors"`
	BackgroundImage string               `json:"background_image,omitempty"`
	Children        []catalog.Card       `json:"children"`
}

// buttonListing is the response for a category's buttons.
type buttonListing struct {
	Category uuid.UUID       `json:"category_id"`
	Href     string          `json:"href"`
	Subtree  bool            `json:"subtree"`
	Buttons  []models.Button `json:"buttons"`
}

// errCategoryNotFound marks a path that does not resolve to an active category.
var errCategoryNotFound = errors.New("category not found")

// Roots serves GET /api/categories: the active root categories as cards.
func (c *Catalog) Roots(w http.ResponseWriter, r *http.Request) {
	c.serveCached(w, r, cache.RootsKey(), func(ctx context.Context) (any, error) {
		tree, err := c.loadTree(ctx)
		if err != nil {
			return nil, err
		}
		cards, err := c.aggregator.Cards(ctx, tree, tree.Roots())
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": nonNil(cards)}, nil
	})
}

// Category serves GET /api/categories/*. A path ending in /buttons lists
// the category's buttons instead; ?subtree=1 extends that listing to all
// descendant categories.
func (c *Catalog) Category(w http.ResponseWriter, r *http.Request) {
	slugs := catalog.SplitPath(chi.URLParam(r, "*"))
	listButtons := len(slugs) > 1 && slugs[len(slugs)-1] == buttonsSegment
	if listButtons {
		slugs = slugs[:len(slugs)-1]
	}

	if len(slugs) == 0 {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}
	for _, s := range slugs {
		if !slug.Valid(s) {
			writeError(w, http.StatusNotFound, "Category not found.")
			return
		}
	}

	if listButtons {
		subtree := r.URL.Query().Get("subtree") == "1"
		c.serveCached(w, r, cache.ButtonsKey(slugs, subtree), func(ctx context.Context) (any, error) {
			return c.buttonListing(ctx, slugs, subtree)
		})
		return
	}

	c.serveCached(w, r, cache.CategoryKey(slugs), func(ctx context.Context) (any, error) {
		return c.categoryPage(ctx, slugs)
	})
}

func (c *Catalog) categoryPage(ctx context.Context, slugs []string) (any, error) {
	tree, err := c.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	cwa := tree.ResolvePath(slugs)
	if cwa == nil {
		return nil, errCategoryNotFound
	}

	children, err := c.aggregator.Cards(ctx, tree, tree.Children(cwa.Category.ID))
	if err != nil {
		return nil, err
	}

	descHTML, err := markdown.ToHTML(cwa.Category.Description)
	if err != nil {
		slog.Warn("category description render failed", "category_id", cwa.Category.ID, "error", err)
		descHTML = ""
	}

	return categoryPage{
		Category:        cwa.Category,
		DescriptionHTML: descHTML,
		Href:            catalog.Href(cwa.Slugs()),
		Breadcrumbs:     catalog.Breadcrumbs(cwa),
		Colors:          catalog.EffectiveColors(cwa),
		BackgroundImage: catalog.EffectiveBackground(cwa),
		Children:        nonNil(children),
	}, nil
}

func (c *Catalog) buttonListing(ctx context.Context, slugs []string, subtree bool) (any, error) {
	tree, err := c.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	cwa := tree.ResolvePath(slugs)
	if cwa == nil {
		return nil, errCategoryNotFound
	}

	ids := []uuid.UUID{cwa.Category.ID}
	if subtree {
		ids = catalog.FilterIDs(tree, cwa.Category.ID)
	}
	buttons, err := c.buttons.ListActiveByCategories(ctx, ids)
	if err != nil {
		return nil, err
	}

	return buttonListing{
		Category: cwa.Category.ID,
		Href:     catalog.Href(cwa.Slugs()),
		Subtree:  subtree,
		Buttons:  nonNil(buttons),
	}, nil
}

func (c *Catalog) loadTree(ctx context.Context) (*catalog.Tree, error) {
	categories, err := c.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewTree(categories), nil
}

// serveCached writes the cached body for key, or builds, encodes, caches
// and writes a fresh one. Only successful responses are cached.
func (c *Catalog) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(ctx context.Context) (any, error)) {
	if body, ok := c.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	data, err := build(r.Context())
	if err != nil {
		if errors.Is(err, errCategoryNotFound) {
			writeError(w, http.StatusNotFound, "Category not found.")
			return
		}
		slog.Error("catalog request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load catalog.")
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode catalog response", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load catalog.")
		return
	}
	c.cache.Set(r.Context(), key, body)

	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, body)
}

// nonNil keeps empty lists encoding as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
