package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// Movements are an append-only ledger; there is no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append persists a new movement record
func (r *GormMovementRepository) Append(ctx context.Context, m *component.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByComponent returns movements for a component, oldest first by default
func (r *GormMovementRepository) FindByComponent(ctx context.Context, componentID uuid.UUID, filter shared.Filter) ([]component.Movement, error) {
	var movements []component.Movement
	query := r.db.WithContext(ctx).
		Model(&component.Movement{}).
		Where("component_id = ?", componentID)

	if movementType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", movementType)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	query = query.Order("created_at " + orderDir)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindLastOutward returns the most recent outward movement for a component
func (r *GormMovementRepository) FindLastOutward(ctx context.Context, componentID uuid.UUID) (*component.Movement, error) {
	var m component.Movement
	if err := r.db.WithContext(ctx).
		Where("component_id = ? AND type = ?", componentID, component.MovementTypeOutward).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CountByComponent counts movements for a component
func (r *GormMovementRepository) CountByComponent(ctx context.Context, componentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&component.Movement{}).
		Where("component_id = ?", componentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ component.MovementRepository = (*GormMovementRepository)(nil)
