// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"buttonshop/internal/colors"
	"buttonshop/internal/models"
)

// ButtonStore handles database operations for catalog buttons. The
// *ByCategories methods answer for a whole set of categories in one query
// so listings never issue a query per category.
type ButtonStore struct {
	db *sql.DB
}

// NewButtonStore creates a new ButtonStore with the given database connection.
func NewButtonStore(db *sql.DB) *ButtonStore {
	return &ButtonStore{db: db}
}

const buttonColumns = `id, name, category_id, price, is_active, image_url,
	dominant_color, accent_color, sort_order, created_at, updated_at`

func scanButton(scanner interface{ Scan(...any) error }) (*models.Button, error) {
	var b models.Button
	err := scanner.Scan(
		&b.ID, &b.Name, &b.CategoryID, &b.Price, &b.IsActive, &b.ImageURL,
		&b.DominantColor, &b.AccentColor, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// inClause builds a "$n, $n+1, ..." placeholder list for ids, numbering
// from start, along with the matching args.
func inClause(ids []uuid.UUID, start int) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

func (s *ButtonStore) list(ctx context.Context, query string, args ...any) ([]models.Button, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Button
	for rows.Next() {
		b, err := scanButton(rows)
		if err != nil {
			return nil, fmt.Errorf("scan button: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// Create inserts a new button and returns it.
func (s *ButtonStore) Create(ctx context.Context, b *models.Button) (*models.Button, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO buttons (name, category_id, price, is_active, image_url,
			dominant_color, accent_color, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+buttonColumns,
		b.Name, b.CategoryID, b.Price, b.IsActive, b.ImageURL,
		b.DominantColor, b.AccentColor, b.SortOrder,
	)
	result, err := scanButton(row)
	if err != nil {
		return nil, fmt.Errorf("create button: %w", err)
	}
	return result, nil
}

// FindByID retrieves a button by ID. Returns nil if not found.
func (s *ButtonStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Button, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+buttonColumns+` FROM buttons WHERE id = $1`, id)
	b, err := scanButton(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find button by id: %w", err)
	}
	return b, nil
}

// FindByIDs returns the buttons with the given ids keyed by id. Unknown ids
// are absent from the map.
func (s *ButtonStore) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Button, error) {
	result := make(map[uuid.UUID]models.Button, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders, args := inClause(ids, 1)
	items, err := s.list(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find buttons by ids: %w", err)
	}
	for _, b := range items {
		result[b.ID] = b
	}
	return result, nil
}

// ListActiveByCategories returns active buttons in any of the given
// categories, ordered for display.
func (s *ButtonStore) ListActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Button, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(categoryIDs, 1)
	items, err := s.list(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE is_active = TRUE AND category_id IN (`+placeholders+`)
		ORDER BY sort_order, name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list buttons by categories: %w", err)
	}
	return items, nil
}

// CountActiveByCategories returns the number of active buttons directly in
// each category. Categories without buttons are absent from the map.
func (s *ButtonStore) CountActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(categoryIDs, 1)
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*)
		FROM buttons
		WHERE is_active = TRUE AND category_id IN (`+placeholders+`)
		GROUP BY category_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("count buttons by categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan button count: %w", err)
		}
		result[id] = n
	}
	return result, rows.Err()
}

// ImagesByCategories returns the image URLs of active buttons keyed by
// category.
func (s *ButtonStore) ImagesByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string)
	if len(categoryIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(categoryIDs, 1)
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, image_url
		FROM buttons
		WHERE is_active = TRUE AND image_url <> '' AND category_id IN (`+placeholders+`)
		ORDER BY category_id, sort_order, name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("button images by categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("scan button image: %w", err)
		}
		result[id] = append(result[id], url)
	}
	return result, rows.Err()
}

// ColorsByCategories returns the derived colors of active buttons, grouped
// by category id, skipping buttons whose colors have not been derived yet.
func (s *ButtonStore) ColorsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]colors.ItemColors, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(categoryIDs, 1)
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, dominant_color, COALESCE(accent_color, '')
		FROM buttons
		WHERE is_active = TRUE AND dominant_color IS NOT NULL AND dominant_color <> ''
		  AND category_id IN (`+placeholders+`)
		ORDER BY category_id, sort_order, name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("button colors by categories: %w", err)
	}
	defer rows.Close()

	var items []colors.ItemColors
	for rows.Next() {
		var it colors.ItemColors
		if err := rows.Scan(&it.GroupID, &it.Dominant, &it.Accent); err != nil {
			return nil, fmt.Errorf("scan button colors: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListMissingColors returns buttons with an image but no derived colors,
// oldest first. Used by the color backfill.
func (s *ButtonStore) ListMissingColors(ctx context.Context, limit int) ([]models.Button, error) {
	items, err := s.list(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE image_url <> '' AND (dominant_color IS NULL OR accent_color IS NULL)
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list buttons missing colors: %w", err)
	}
	return items, nil
}

// ListAll returns every button with an image, oldest first.
func (s *ButtonStore) ListAll(ctx context.Context) ([]models.Button, error) {
	items, err := s.list(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE image_url <> ''
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	return items, nil
}

// UpdateColors stores the derived colors of a button.
func (s *ButtonStore) UpdateColors(ctx context.Context, id uuid.UUID, dominant, accent string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE buttons SET dominant_color = $1, accent_color = $2, updated_at = NOW()
		WHERE id = $3
	`, dominant, accent, id)
	if err != nil {
		return fmt.Errorf("update button colors: %w", err)
	}
	return nil
}

// UpdateImage replaces a button's image together with the colors derived
// from it, so the two can never disagree.
func (s *ButtonStore) UpdateImage(ctx context.Context, id uuid.UUID, imageURL, dominant, accent string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE buttons SET image_url = $1, dominant_color = $2, accent_color = $3, updated_at = NOW()
		WHERE id = $4
	`, imageURL, dominant, accent, id)
	if err != nil {
		return fmt.Errorf("update button image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update button image: button %s not found", id)
	}
	return nil
}

// Delete removes a button by ID.
func (s *ButtonStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM buttons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete button: %w", err)
	}
	return nil
}
