package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/slug"
)

type seedButton struct {
	name  string
	price string
	image string
}

type seedCategory struct {
	name        string
	description string
	primary     string
	secondary   string
	buttons     []seedButton
	children    []seedCategory
}

// seedCatalog is a small forest covering explicit colors, inherited colors
// and a category whose only buttons live in a subcategory.
var seedCatalog = []seedCategory{
	{
		name:        "Animals",
		description: "Critters of every **shape** and size.",
		primary:     "#f59e0b",
		secondary:   "#1e3a8a",
		children: []seedCategory{
			{
				name:        "Cats",
				description: "For people who are owned by a cat.",
				buttons: []seedButton{
					{name: "Grumpy Cat", price: "2.50", image: "/static/seed/grumpy-cat.png"},
					{name: "Loaf", price: "2.50", image: "/static/seed/loaf.png"},
				},
				children: []seedCategory{
					{
						name: "Kittens",
						buttons: []seedButton{
							{name: "Tiny Beans", price: "2.75", image: "/static/seed/tiny-beans.png"},
						},
					},
				},
			},
			{
				name: "Dogs",
				buttons: []seedButton{
					{name: "Good Boy", price: "2.50", image: "/static/seed/good-boy.png"},
				},
			},
		},
	},
	{
		name:        "Music",
		description: "Band pins, genre badges and gig souvenirs.",
		children: []seedCategory{
			{
				name: "Punk",
				buttons: []seedButton{
					{name: "Safety Pin", price: "2.00", image: "/static/seed/safety-pin.png"},
					{name: "Three Chords", price: "2.00", image: "/static/seed/three-chords.png"},
					{name: "DIY or Die", price: "2.00", image: "/static/seed/diy.png"},
				},
			},
		},
	},
	{
		name:        "Custom",
		description: "Your design, your buttons. [Request a quote](/requests).",
		primary:     "#7c3aed",
	},
}

// Seed populates an empty catalog with development data. It does nothing
// when at least one category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	var categories, buttons int
	roots := make(map[string]bool)
	for i, c := range seedCatalog {
		nc, nb, err := seedTree(tx, c, nil, i, roots)
		if err != nil {
			return err
		}
		categories += nc
		buttons += nb
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample catalog",
		"categories", categories,
		"buttons", buttons,
	)
	return nil
}

// seedTree inserts c and everything below it, returning how many
// categories and buttons were created. siblings holds the slugs already
// used under the same parent.
func seedTree(tx *sql.Tx, c seedCategory, parentID *uuid.UUID, order int, siblings map[string]bool) (int, int, error) {
	s := slug.Unique(slug.Generate(c.name), func(candidate string) bool { return siblings[candidate] })
	siblings[s] = true

	var id uuid.UUID
	err := tx.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, sort_order, primary_color, secondary_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.name, s, c.description, parentID, order,
		nullString(c.primary), nullString(c.secondary),
	).Scan(&id)
	if err != nil {
		return 0, 0, fmt.Errorf("seed insert category %q: %w", c.name, err)
	}

	categories, buttons := 1, 0
	for i, b := range c.buttons {
		price, err := decimal.NewFromString(b.price)
		if err != nil {
			return 0, 0, fmt.Errorf("seed price for %q: %w", b.name, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO buttons (name, category_id, price, image_url, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`, b.name, id, price, b.image, i); err != nil {
			return 0, 0, fmt.Errorf("seed insert button %q: %w", b.name, err)
		}
		buttons++
	}

	children := make(map[string]bool)
	for i, child := range c.children {
		nc, nb, err := seedTree(tx, child, &id, i, children)
		if err != nil {
			return 0, 0, err
		}
		categories += nc
		buttons += nb
	}
	return categories, buttons, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
