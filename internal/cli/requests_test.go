package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
)

type fakeAnswerer struct {
	requests map[uuid.UUID]*models.CustomRequest
	quoted   map[uuid.UUID]decimal.Decimal
	closed   []uuid.UUID
}

func (f *fakeAnswerer) FindByID(ctx context.Context, id uuid.UUID) (*models.CustomRequest, error) {
	return f.requests[id], nil
}

func (f *fakeAnswerer) SetQuote(ctx context.Context, id uuid.UUID, unitPrice decimal.Decimal) error {
	if f.quoted == nil {
		f.quoted = make(map[uuid.UUID]decimal.Decimal)
	}
	f.quoted[id] = unitPrice
	return nil
}

func (f *fakeAnswerer) Close(ctx context.Context, id uuid.UUID) error {
	f.closed = append(f.closed, id)
	return nil
}

func TestParseUnitPrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3.5", "3.50", false},
		{"2.499", "2.50", false},
		{"0", "", true},
		{"-1", "", true},
		{"cheap", "", true},
	}
	for _, tt := range tests {
		got, err := parseUnitPrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseUnitPrice(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseUnitPrice(%q): %v", tt.in, err)
			continue
		}
		if got.StringFixed(2) != tt.want {
			t.Errorf("parseUnitPrice(%q) = %s, want %s", tt.in, got.StringFixed(2), tt.want)
		}
	}
}

func TestAnswerRequest(t *testing.T) {
	openID, closedID := uuid.New(), uuid.New()
	newStore := func() *fakeAnswerer {
		return &fakeAnswerer{requests: map[uuid.UUID]*models.CustomRequest{
			openID:   {ID: openID, Email: "ada@example.com", Quantity: 300, Status: models.RequestStatusNew},
			closedID: {ID: closedID, Email: "bob@example.com", Quantity: 10, Status: models.RequestStatusClosed},
		}}
	}
	price := decimal.RequireFromString("3.25")

	t.Run("quote", func(t *testing.T) {
		s := newStore()
		var out bytes.Buffer
		if err := answerRequest(context.Background(), s, &out, openID, &price); err != nil {
			t.Fatalf("answerRequest: %v", err)
		}
		if !s.quoted[openID].Equal(price) {
			t.Errorf("quoted = %s, want 3.25", s.quoted[openID])
		}
		if !strings.Contains(out.String(), "3.25 x 300 = 975.00") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("closed request cannot be quoted", func(t *testing.T) {
		s := newStore()
		if err := answerRequest(context.Background(), s, &bytes.Buffer{}, closedID, &price); err == nil {
			t.Error("expected error")
		}
		if len(s.quoted) != 0 {
			t.Error("closed request was quoted")
		}
	})

	t.Run("close", func(t *testing.T) {
		s := newStore()
		if err := answerRequest(context.Background(), s, &bytes.Buffer{}, openID, nil); err != nil {
			t.Fatalf("answerRequest: %v", err)
		}
		if len(s.closed) != 1 || s.closed[0] != openID {
			t.Errorf("closed = %v", s.closed)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if err := answerRequest(context.Background(), newStore(), &bytes.Buffer{}, uuid.New(), &price); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPrintRequests(t *testing.T) {
	table, err := pricing.FromConfig(
		decimal.RequireFromString("5.00"),
		decimal.RequireFromString("4.50"), 100,
		decimal.RequireFromString("4.00"), 200,
	)
	if err != nil {
		t.Fatal(err)
	}
	quoted := decimal.RequireFromString("3.9")
	items := []models.CustomRequest{
		{ID: uuid.New(), Email: "ada@example.com", Quantity: 150, Status: models.RequestStatusNew, CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
		{ID: uuid.New(), Email: "bob@example.com", Quantity: 500, Status: models.RequestStatusQuoted, QuotedPrice: &quoted},
	}

	var out bytes.Buffer
	if err := printRequests(&out, items, table); err != nil {
		t.Fatalf("printRequests: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"4.50", "-", "2026-03-01 09:30"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row 1 missing %q: %q", want, lines[1])
		}
	}
	for _, want := range []string{"4.00", "3.90"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("row 2 missing %q: %q", want, lines[2])
		}
	}
}
