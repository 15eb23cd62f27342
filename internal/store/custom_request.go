// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/models"
)

// CustomRequestStore persists custom-order requests.
type CustomRequestStore struct {
	db *sql.DB
}

// NewCustomRequestStore creates a new CustomRequestStore.
func NewCustomRequestStore(db *sql.DB) *CustomRequestStore {
	return &CustomRequestStore{db: db}
}

const customRequestColumns = `id, name, email, quantity, description, status, quoted_price, created_at, updated_at`

func scanCustomRequest(scanner interface{ Scan(...any) error }) (*models.CustomRequest, error) {
	var r models.CustomRequest
	var quoted decimal.NullDecimal
	err := scanner.Scan(
		&r.ID, &r.Name, &r.Email, &r.Quantity, &r.Description,
		&r.Status, &quoted, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if quoted.Valid {
		r.QuotedPrice = &quoted.Decimal
	}
	return &r, nil
}

// Create inserts a new request with status "new".
func (s *CustomRequestStore) Create(ctx context.Context, r *models.CustomRequest) (*models.CustomRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO custom_requests (name, email, quantity, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customRequestColumns,
		r.Name, r.Email, r.Quantity, r.Description, models.RequestStatusNew,
	)
	result, err := scanCustomRequest(row)
	if err != nil {
		return nil, fmt.Errorf("create custom request: %w", err)
	}
	return result, nil
}

// FindByID retrieves a request by ID. Returns nil if not found.
func (s *CustomRequestStore) FindByID(ctx context.Context, id uuid.UUID) (*models.CustomRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customRequestColumns+` FROM custom_requests WHERE id = $1`, id)
	r, err := scanCustomRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find custom request: %w", err)
	}
	return r, nil
}

// List returns requests newest first, optionally filtered by status.
func (s *CustomRequestStore) List(ctx context.Context, status models.RequestStatus, limit int) ([]models.CustomRequest, error) {
	query := `SELECT ` + customRequestColumns + ` FROM custom_requests`
	args := []any{limit}
	if status != "" {
		query += ` WHERE status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list custom requests: %w", err)
	}
	defer rows.Close()

	var items []models.CustomRequest
	for rows.Next() {
		r, err := scanCustomRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan custom request: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// SetQuote records the quoted unit price and moves the request to "quoted".
func (s *CustomRequestStore) SetQuote(ctx context.Context, id uuid.UUID, unitPrice decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE custom_requests SET quoted_price = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`, unitPrice, models.RequestStatusQuoted, id)
	if err != nil {
		return fmt.Errorf("set quote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set quote: request %s not found", id)
	}
	return nil
}

// Close marks a request as closed.
func (s *CustomRequestStore) Close(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE custom_requests SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.RequestStatusClosed, id); err != nil {
		return fmt.Errorf("close request: %w", err)
	}
	return nil
}
