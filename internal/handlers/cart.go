// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
)

// ButtonFinder loads buttons by id in one query.
type ButtonFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Button, error)
}

// Shop groups the pricing and cart endpoints. Both read the same tier
// table, so the advertised price is always the charged price.
type Shop struct {
	pricing *pricing.Table
	buttons ButtonFinder
}

// NewShop creates the pricing and cart handler group.
func NewShop(table *pricing.Table, buttons ButtonFinder) *Shop {
	return &Shop{pricing: table, buttons: buttons}
}

// pricingResponse is the body of GET /api/pricing.
type pricingResponse struct {
	Tiers []pricing.Tier `json:"tiers"`
	Quote *pricing.Quote `json:"quote,omitempty"`
}

// Pricing serves GET /api/pricing. With ?quantity=n it also prices n units
// and reports the next discount threshold.
func (s *Shop) Pricing(w http.ResponseWriter, r *http.Request) {
	resp := pricingResponse{Tiers: s.pricing.Tiers()}

	if raw := r.URL.Query().Get("quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q < 0 {
			writeError(w, http.StatusBadRequest, "Quantity must be a non-negative integer.")
			return
		}
		quote := s.pricing.Quote(q)
		resp.Quote = &quote
	}

	writeJSON(w, http.StatusOK, resp)
}

// cartItem is one requested line of a cart.
type cartItem struct {
	ButtonID uuid.UUID `json:"button_id"`
	Quantity int       `json:"quantity"`
}

type cartRequest struct {
	Items []cartItem `json:"items"`
}

// cartLine is a priced cart line. UnitPrice is the cart-wide tier price,
// not the button's stored price.
type cartLine struct {
	ButtonID  uuid.UUID       `json:"button_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartQuote struct {
	Items []cartLine `json:"items"`
	pricing.Quote
}

// CartQuote serves POST /api/cart/quote. The tier is chosen by the total
// quantity across all lines and applied to every line.
func (s *Shop) CartQuote(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateCart(req.Items); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ButtonID)
	}
	found, err := s.buttons.FindByIDs(r.Context(), ids)
	if err != nil {
		slog.Error("cart quote: load buttons", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to price cart.")
		return
	}

	total := 0
	for _, item := range req.Items {
		b, ok := found[item.ButtonID]
		if !ok || !b.IsActive {
			writeError(w, http.StatusBadRequest, "Button "+item.ButtonID.String()+" is not available.")
			return
		}
		total += item.Quantity
	}

	quote := s.pricing.Quote(total)
	lines := make([]cartLine, 0, len(req.Items))
	for _, item := range req.Items {
		b := found[item.ButtonID]
		lines = append(lines, cartLine{
			ButtonID:  b.ID,
			Name:      b.Name,
			ImageURL:  b.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: quote.UnitPrice,
			LineTotal: quote.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	writeJSON(w, http.StatusOK, cartQuote{Items: lines, Quote: quote})
}
