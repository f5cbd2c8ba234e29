// Package testutil provides test utilities for database setup.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/domxml/internal/infrastructure/sqlite/migrations"
)

// NewTestDB creates an in-memory SQLite database with the library schema.
// The pool is limited to one connection so every query sees the same
// in-memory database. The database is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := migrations.UpSchema()
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}
