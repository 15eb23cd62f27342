// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
)

// RequestStore persists custom-order requests.
type RequestStore interface {
	Create(ctx context.Context, r *models.CustomRequest) (*models.CustomRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CustomRequest, error)
}

// Requests groups the custom-order request endpoints.
type Requests struct {
	store   RequestStore
	pricing *pricing.Table
}

// NewRequests creates the custom-order request handler group.
func NewRequests(store RequestStore, table *pricing.Table) *Requests {
	return &Requests{store: store, pricing: table}
}

type createRequestBody struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

// requestResponse pairs a request with the catalog tier quote for its
// quantity, so the customer sees the standard price next to any manual
// quote.
type requestResponse struct {
	Request *models.CustomRequest `json:"request"`
	Quote   pricing.Quote         `json:"quote"`
}

// Create serves POST /api/requests.
func (h *Requests) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if msg, ok := decodeJSON(w, r, &body); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateRequest(body.Name, body.Email, body.Quantity, body.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.store.Create(r.Context(), &models.CustomRequest{
		Name:        strings.TrimSpace(body.Name),
		Email:       strings.TrimSpace(body.Email),
		Quantity:    body.Quantity,
		Description: strings.TrimSpace(body.Description),
	})
	if err != nil {
		slog.Error("create custom request", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save request.")
		return
	}

	slog.Info("custom request received", "request_id", created.ID, "quantity", created.Quantity)
	writeJSON(w, http.StatusCreated, requestResponse{
		Request: created,
		Quote:   h.pricing.Quote(created.Quantity),
	})
}

// Get serves GET /api/requests/{id}.
func (h *Requests) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Request not found.")
		return
	}

	req, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find custom request", "request_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load request.")
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Request not found.")
		return
	}

	writeJSON(w, http.StatusOK, requestResponse{
		Request: req,
		Quote:   h.pricing.Quote(req.Quantity),
	})
}
