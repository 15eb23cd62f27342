package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/models"
)

func TestCustomRequestStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewCustomRequestStore(db)
	ctx := context.Background()

	email := "req-" + uuid.NewString()[:8] + "@example.com"
	t.Cleanup(func() { cleanRequests(t, db, email) })

	created, err := s.Create(ctx, &models.CustomRequest{
		Name:        "Pat",
		Email:       email,
		Quantity:    150,
		Description: "Band logo, 38mm",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.RequestStatusNew || created.QuotedPrice != nil {
		t.Errorf("new request: got status %s, quote %v", created.Status, created.QuotedPrice)
	}

	if err := s.SetQuote(ctx, created.ID, decimal.RequireFromString("4.50")); err != nil {
		t.Fatalf("SetQuote: %v", err)
	}
	got, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.RequestStatusQuoted {
		t.Errorf("status: got %s, want quoted", got.Status)
	}
	if got.QuotedPrice == nil || !got.QuotedPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("quote: got %v", got.QuotedPrice)
	}

	quoted, err := s.List(ctx, models.RequestStatusQuoted, 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var found bool
	for _, r := range quoted {
		if r.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("quoted request missing from filtered list")
	}

	if err := s.Close(ctx, created.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, _ = s.FindByID(ctx, created.ID)
	if got.IsOpen() {
		t.Error("closed request still open")
	}
}

func TestCustomRequestStoreNotFound(t *testing.T) {
	db := testDB(t)
	s := NewCustomRequestStore(db)
	ctx := context.Background()

	got, err := s.FindByID(ctx, uuid.New())
	if err != nil || got != nil {
		t.Errorf("FindByID unknown: got %+v, %v", got, err)
	}
	if err := s.SetQuote(ctx, uuid.New(), decimal.NewFromInt(1)); err == nil {
		t.Error("SetQuote on unknown id should fail")
	}
}
