// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buttonshop/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order, is_active,
	primary_color, secondary_color, background_image, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.SortOrder, &c.IsActive,
		&c.PrimaryColor, &c.SecondaryColor, &c.BackgroundImage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) query(ctx context.Context, where string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		`+where+`
		ORDER BY sort_order, name
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// List returns every category, active or not, ordered by sort_order.
// Callers index the result with catalog.NewTree.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.query(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// ListActive returns only active categories.
func (s *CategoryStore) ListActive(ctx context.Context) ([]models.Category, error) {
	items, err := s.query(ctx, "WHERE is_active = TRUE")
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id, sort_order, is_active,
			primary_color, secondary_color, background_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.IsActive,
		c.PrimaryColor, c.SecondaryColor, c.BackgroundImage,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			sort_order = $5, is_active = $6, primary_color = $7,
			secondary_color = $8, background_image = $9, updated_at = NOW()
		WHERE id = $10
	`, c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.IsActive,
		c.PrimaryColor, c.SecondaryColor, c.BackgroundImage, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// SetColors stores explicit theme colors. A nil value clears the color so
// it is inherited again.
func (s *CategoryStore) SetColors(ctx context.Context, id uuid.UUID, primary, secondary *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET primary_color = $1, secondary_color = $2, updated_at = NOW()
		WHERE id = $3
	`, primary, secondary, id)
	if err != nil {
		return fmt.Errorf("set category colors: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Children become roots and buttons become
// uncategorized (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder updates sort_order and parent_id for multiple categories in a transaction.
func (s *CategoryStore) Reorder(ctx context.Context, items []ReorderItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE categories SET parent_id = $1, sort_order = $2, updated_at = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ParentID, item.Order, now, item.ID); err != nil {
			return fmt.Errorf("reorder category %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
