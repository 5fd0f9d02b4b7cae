package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmoraleda/fintrack-be/internal/database"
)

// newTestDB opens an in-memory database with the full schema applied.
// A single connection keeps the in-memory database alive for the whole test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err, "failed to open test database")
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() { db.Close() })
	return db
}

const testRefreshTTL = 24 * time.Hour
