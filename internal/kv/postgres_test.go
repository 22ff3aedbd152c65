package kv

import (
	"context"
	"database/sql"
	"testing"

	"folio/internal/database"
)

// testDB opens the test database and runs migrations. Skips when PostgreSQL
// is not reachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "folio") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "folio") + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresRoundTrip(t *testing.T) {
	db := testDB(t)
	backend := NewPostgres(db)
	ctx := context.Background()

	key := "kv-test-key"
	t.Cleanup(func() { db.Exec("DELETE FROM kv_store WHERE key = $1", key) })

	if _, ok, err := backend.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	if err := backend.Set(ctx, key, "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := backend.Set(ctx, key, "second"); err != nil {
		t.Fatalf("Set (upsert): %v", err)
	}

	v, ok, err := backend.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if v != "second" {
		t.Errorf("value: got %q, want %q", v, "second")
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := backend.Get(ctx, key); ok {
		t.Error("expected key to be gone after Delete")
	}
}
