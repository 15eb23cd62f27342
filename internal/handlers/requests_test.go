package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
)

func newRequestsRouter(h *Requests) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/requests", h.Create)
	r.Get("/api/requests/{id}", h.Get)
	return r
}

func TestCreateRequest(t *testing.T) {
	store := &fakeRequests{}
	h := NewRequests(store, testPricing(t))

	rec := post(t, h.Create, "/api/requests",
		`{"name":"  Ada  ","email":"ada@example.com","quantity":150,"description":"Band logo, 38mm"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Request models.CustomRequest `json:"request"`
		Quote   pricing.Quote        `json:"quote"`
	}
	decode(t, rec, &body)

	if body.Request.Name != "Ada" {
		t.Errorf("name = %q, want trimmed", body.Request.Name)
	}
	if body.Request.Status != models.RequestStatusNew {
		t.Errorf("status = %q", body.Request.Status)
	}
	if !body.Quote.UnitPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("quote unit = %s, want 4.50", body.Quote.UnitPrice)
	}
	if _, ok := store.byID[body.Request.ID]; !ok {
		t.Error("request not persisted")
	}
}

func TestCreateRequestInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.co","quantity":1,"description":"x"}`},
		{"bad email", `{"name":"A","email":"not-an-email","quantity":1,"description":"x"}`},
		{"display-name email", `{"name":"A","email":"Ada <a@b.co>","quantity":1,"description":"x"}`},
		{"zero quantity", `{"name":"A","email":"a@b.co","quantity":0,"description":"x"}`},
		{"blank description", `{"name":"A","email":"a@b.co","quantity":1,"description":"  "}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRequests{}
			h := NewRequests(store, testPricing(t))
			rec := post(t, h.Create, "/api/requests", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(store.byID) != 0 {
				t.Error("invalid request was persisted")
			}
		})
	}
}

func TestGetRequest(t *testing.T) {
	quoted := decimal.RequireFromString("3.75")
	id := uuid.New()
	store := &fakeRequests{byID: map[uuid.UUID]*models.CustomRequest{
		id: {ID: id, Name: "Ada", Email: "ada@example.com", Quantity: 250,
			Description: "logo", Status: models.RequestStatusQuoted, QuotedPrice: &quoted},
	}}
	h := newRequestsRouter(NewRequests(store, testPricing(t)))

	rec := get(t, h, "/api/requests/"+id.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Request models.CustomRequest `json:"request"`
		Quote   pricing.Quote        `json:"quote"`
	}
	decode(t, rec, &body)

	if body.Request.QuotedPrice == nil || !body.Request.QuotedPrice.Equal(quoted) {
		t.Errorf("quoted price = %v, want 3.75", body.Request.QuotedPrice)
	}
	if !body.Quote.UnitPrice.Equal(decimal.RequireFromString("4.00")) || body.Quote.Next != nil {
		t.Errorf("quote = %+v, want top tier 4.00", body.Quote)
	}
}

func TestGetRequestNotFound(t *testing.T) {
	h := newRequestsRouter(NewRequests(&fakeRequests{}, testPricing(t)))

	for _, path := range []string{"/api/requests/" + uuid.New().String(), "/api/requests/not-a-uuid"} {
		if rec := get(t, h, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestRequestStoreErrors(t *testing.T) {
	h := NewRequests(&fakeRequests{err: errBoom}, testPricing(t))

	rec := post(t, h.Create, "/api/requests", `{"name":"A","email":"a@b.co","quantity":1,"description":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("create status = %d, want 500", rec.Code)
	}

	rec = get(t, newRequestsRouter(h), "/api/requests/"+uuid.New().String())
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("get status = %d, want 500", rec.Code)
	}
}

func TestRequestsRouteRejectsOtherMethods(t *testing.T) {
	h := newRequestsRouter(NewRequests(&fakeRequests{}, testPricing(t)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/requests/"+uuid.New().String(), nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
