// Package databasetest provides a migrated SQLite database for tests.
package databasetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/fkhayef/splitsmart/internal/database"
)

// New returns a freshly migrated database backed by a temp file. It is closed
// when the test ends.
func New(t testing.TB) *sql.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	if err := database.Migrate(database.DriverSQLite, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(context.Background(), database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
