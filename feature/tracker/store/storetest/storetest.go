// Package storetest provides migrated in-memory stores for tests.
package storetest

import (
	"context"
	"testing"

	"ixp-tracker/core/database"
	"ixp-tracker/feature/tracker/store"

	"github.com/stretchr/testify/require"
)

// New returns a store on a fresh in-memory sqlite database with every table migrated.
func New(t testing.TB) *store.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := store.New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}
