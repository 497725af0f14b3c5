package persistence

import (
	"context"
	"testing"

	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// The SQLite driver drops FOR UPDATE clauses, so locking queries degrade
// to plain reads here.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func newStoredComponent(t *testing.T, db *gorm.DB, name, partNumber string, category component.Category, quantity, threshold int64) *component.Component {
	t.Helper()
	c, err := component.NewComponent(name, partNumber, "Yageo", category, "", quantity, decimal.NewFromFloat(0.02), threshold, "Shelf A3")
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, NewGormComponentRepository(db).Save(context.Background(), c))
	return c
}

func newStoredUser(t *testing.T, db *gorm.DB, username string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, "Test User", username+"@lab.example", role, "hunter2hunter2")
	require.NoError(t, err)
	u.ClearDomainEvents()
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}
