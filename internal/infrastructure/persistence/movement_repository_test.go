package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func appendMovement(t *testing.T, db *gorm.DB, c *component.Component, movementType component.MovementType, quantity int64) *component.Movement {
	t.Helper()
	m, err := c.ApplyMovement(movementType, quantity, uuid.New(), "alice", "test", "", "")
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, NewGormMovementRepository(db).Append(context.Background(), m))
	require.NoError(t, NewGormComponentRepository(db).Save(context.Background(), c))
	return m
}

func TestGormMovementRepository_FindByComponent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	c := newStoredComponent(t, db, "10k resistor", "RES-0603-10K", component.CategoryResistor, 500, 50)
	other := newStoredComponent(t, db, "100n capacitor", "CAP-0805-100N", component.CategoryCapacitor, 100, 10)

	appendMovement(t, db, c, component.MovementTypeOutward, 100)
	appendMovement(t, db, c, component.MovementTypeInward, 30)
	appendMovement(t, db, c, component.MovementTypeOutward, 5)
	appendMovement(t, db, other, component.MovementTypeOutward, 1)

	t.Run("returns only the component's movements oldest first", func(t *testing.T) {
		movements, err := repo.FindByComponent(ctx, c.ID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, movements, 3)
		assert.Equal(t, int64(100), movements[0].Quantity)
		assert.Equal(t, int64(5), movements[2].Quantity)
	})

	t.Run("filters by type", func(t *testing.T) {
		outward, err := repo.FindByComponent(ctx, c.ID, shared.Filter{
			Filters: map[string]interface{}{"type": "outward"},
		})
		require.NoError(t, err)
		assert.Len(t, outward, 2)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := repo.FindByComponent(ctx, c.ID, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(5), page[0].Quantity)
	})

	count, err := repo.CountByComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormMovementRepository_FindLastOutward(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	c := newStoredComponent(t, db, "10k resistor", "RES-0603-10K", component.CategoryResistor, 500, 50)

	_, err := repo.FindLastOutward(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	appendMovement(t, db, c, component.MovementTypeOutward, 100)
	appendMovement(t, db, c, component.MovementTypeInward, 30)
	last := appendMovement(t, db, c, component.MovementTypeOutward, 5)

	found, err := repo.FindLastOutward(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, last.ID, found.ID)
	assert.Equal(t, component.MovementTypeOutward, found.Type)
}
