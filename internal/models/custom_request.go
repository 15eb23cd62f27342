// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus tracks a custom-order request through quoting.
type RequestStatus string

const (
	RequestStatusNew    RequestStatus = "new"
	RequestStatusQuoted RequestStatus = "quoted"
	RequestStatusClosed RequestStatus = "closed"
)

// CustomRequest is a customer's request for a custom button design.
type CustomRequest struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Quantity    int              `json:"quantity"`
	Description string           `json:"description"`
	Status      RequestStatus    `json:"status"`
	QuotedPrice *decimal.Decimal `json:"quoted_price,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsOpen reports whether the request still awaits a final answer.
func (r *CustomRequest) IsOpen() bool {
	return r.Status != RequestStatusClosed
}
