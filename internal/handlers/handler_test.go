package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"buttonshop/internal/catalog"
	"buttonshop/internal/colors"
	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
)

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	clean := func() {
		keys, _ := client.Keys(ctx, "catalog:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	}
	clean()
	t.Cleanup(func() {
		clean()
		client.Close()
	})
	return client
}

func strPtr(s string) *string { return &s }

var (
	animalsID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	catsID    = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	kittensID = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	musicID   = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	hiddenID  = uuid.MustParse("00000000-0000-0000-0000-00000000000e")

	catButtonID    = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	kittenButtonID = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	retiredID      = uuid.MustParse("00000000-0000-0000-0000-0000000000b3")
)

// fixtureCategories is Animals > Cats > Kittens, Music, and an inactive
// Hidden root.
func fixtureCategories() []models.Category {
	return []models.Category{
		{ID: animalsID, Name: "Animals", Slug: "animals", SortOrder: 0, IsActive: true,
			Description: "All **creatures**.", PrimaryColor: strPtr("#112233"),
			BackgroundImage: strPtr("/img/zoo.png")},
		{ID: catsID, Name: "Cats", Slug: "cats", ParentID: &animalsID, IsActive: true},
		{ID: kittensID, Name: "Kittens", Slug: "kittens", ParentID: &catsID, IsActive: true},
		{ID: musicID, Name: "Music", Slug: "music", SortOrder: 1, IsActive: true},
		{ID: hiddenID, Name: "Hidden", Slug: "hidden", SortOrder: 2, IsActive: false},
	}
}

func fixtureButtons() []models.Button {
	return []models.Button{
		{ID: catButtonID, Name: "Cat", CategoryID: &catsID, Price: decimal.RequireFromString("3.00"),
			IsActive: true, ImageURL: "/img/cat.png", DominantColor: strPtr("#c81e28"), AccentColor: strPtr("#1e28c8")},
		{ID: kittenButtonID, Name: "Kitten", CategoryID: &kittensID, Price: decimal.RequireFromString("3.00"),
			IsActive: true, ImageURL: "/img/kitten.png"},
		{ID: retiredID, Name: "Retired", CategoryID: &musicID, Price: decimal.RequireFromString("3.00"),
			IsActive: false, ImageURL: "/img/retired.png"},
	}
}

type fakeCategories struct {
	categories []models.Category
	err        error
	calls      int
}

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	f.calls++
	return f.categories, f.err
}

// fakeButtons answers every button query from an in-memory list.
type fakeButtons struct {
	buttons []models.Button
	err     error
}

func (f *fakeButtons) active(ids []uuid.UUID) []models.Button {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Button
	for _, b := range f.buttons {
		if b.IsActive && b.CategoryID != nil && want[*b.CategoryID] {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeButtons) ListActiveByCategories(ctx context.Context, ids []uuid.UUID) ([]models.Button, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.active(ids), nil
}

func (f *fakeButtons) CountActiveByCategories(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[uuid.UUID]int)
	for _, b := range f.active(ids) {
		counts[*b.CategoryID]++
	}
	return counts, nil
}

func (f *fakeButtons) ImagesByCategories(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	images := make(map[uuid.UUID][]string)
	for _, b := range f.active(ids) {
		if b.ImageURL != "" {
			images[*b.CategoryID] = append(images[*b.CategoryID], b.ImageURL)
		}
	}
	return images, nil
}

func (f *fakeButtons) ColorsByCategories(ctx context.Context, ids []uuid.UUID) ([]colors.ItemColors, error) {
	if f.err != nil {
		return nil, f.err
	}
	var items []colors.ItemColors
	for _, b := range f.active(ids) {
		if b.DominantColor == nil {
			continue
		}
		it := colors.ItemColors{GroupID: *b.CategoryID, Dominant: *b.DominantColor}
		if b.AccentColor != nil {
			it.Accent = *b.AccentColor
		}
		items = append(items, it)
	}
	return items, nil
}

func (f *fakeButtons) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Button, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]models.Button)
	for _, id := range ids {
		for _, b := range f.buttons {
			if b.ID == id {
				out[id] = b
			}
		}
	}
	return out, nil
}

type fakeRequests struct {
	byID map[uuid.UUID]*models.CustomRequest
	err  error
}

func (f *fakeRequests) Create(ctx context.Context, r *models.CustomRequest) (*models.CustomRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := *r
	created.ID = uuid.New()
	created.Status = models.RequestStatusNew
	if f.byID == nil {
		f.byID = make(map[uuid.UUID]*models.CustomRequest)
	}
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeRequests) FindByID(ctx context.Context, id uuid.UUID) (*models.CustomRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

var errBoom = errors.New("boom")

// testPricing is the default three-tier table: 5.00, 4.50 from 100,
// 4.00 from 200.
func testPricing(t *testing.T) *pricing.Table {
	t.Helper()
	table, err := pricing.FromConfig(
		decimal.RequireFromString("5.00"),
		decimal.RequireFromString("4.50"), 100,
		decimal.RequireFromString("4.00"), 200,
	)
	if err != nil {
		t.Fatalf("pricing: %v", err)
	}
	return table
}

// newCatalogRouter mounts the catalog handlers the way the app router does.
func newCatalogRouter(h *Catalog) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/categories", h.Roots)
	r.Get("/api/categories/*", h.Category)
	return r
}

func newTestCatalog(cats *fakeCategories, buttons *fakeButtons) *Catalog {
	agg := catalog.NewAggregator(buttons, nil, func(int) int { return 0 })
	return NewCatalog(cats, buttons, agg, nil)
}
