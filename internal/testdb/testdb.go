// Package testdb opens throwaway in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helixml/compset/infrastructure/persistence"
	"github.com/helixml/compset/internal/database"
)

const memoryURL = "sqlite:///:memory:"

// New returns a database with the compset schema migrated. It is closed
// when the test ends.
func New(t testing.TB) database.Database {
	t.Helper()
	db := NewPlain(t)
	require.NoError(t, persistence.AutoMigrate(db), "migrate compset schema")
	return db
}

// NewPlain returns an empty database, for tests that bring their own
// tables.
func NewPlain(t testing.TB) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), memoryURL)
	require.NoError(t, err, "open %s", memoryURL)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithSchema returns an empty database after running each DDL statement.
func WithSchema(t testing.TB, statements ...string) database.Database {
	t.Helper()
	db := NewPlain(t)
	session := db.Session(context.Background())
	for _, stmt := range statements {
		require.NoError(t, session.Exec(stmt).Error, "exec %s", stmt)
	}
	return db
}
