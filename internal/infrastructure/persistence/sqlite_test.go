package persistence

import (
	"testing"

	"github.com/ippis/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newSQLiteDB opens a private in-memory database with the full schema.
// A single connection keeps the in-memory database alive for the test.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := d.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.DB.AutoMigrate(models.AllModels()...))
	return d.DB
}
