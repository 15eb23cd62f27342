// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"buttonshop/internal/database"
	"buttonshop/internal/models"
	"buttonshop/internal/slug"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "buttonshop")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "buttonshop")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestCategory inserts an active category with a unique slug and
// removes it (and its buttons' category link) when the test ends.
func createTestCategory(t *testing.T, db *sql.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	c, err := s.Create(context.Background(), &models.Category{
		Name:     name,
		Slug:     slug.Generate(name + " " + uuid.NewString()[:8]),
		ParentID: parentID,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// cleanButtons removes test buttons by id. Call in t.Cleanup().
func cleanButtons(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM buttons WHERE id = $1", id)
	}
}

// cleanRequests removes test custom requests by email. Call in t.Cleanup().
func cleanRequests(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM custom_requests WHERE email = $1", email)
	}
}
