package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// componentSortColumns is the allow-list for user-supplied ordering
var componentSortColumns = map[string]bool{
	"name":        true,
	"part_number": true,
	"category":    true,
	"quantity":    true,
	"unit_price":  true,
	"location":    true,
	"created_at":  true,
	"updated_at":  true,
}

// GormComponentRepository implements ComponentRepository using GORM
type GormComponentRepository struct {
	db *gorm.DB
}

// NewGormComponentRepository creates a new GormComponentRepository
func NewGormComponentRepository(db *gorm.DB) *GormComponentRepository {
	return &GormComponentRepository{db: db}
}

// FindByID finds a component by its ID
func (r *GormComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	var c component.Component
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDForUpdate finds a component holding a row-level write lock.
// Must run inside a transaction; concurrent movements against the same
// component serialize on this lock.
func (r *GormComponentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	var c component.Component
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDWithMovements finds a component with its full movement history,
// oldest first
func (r *GormComponentRepository) FindByIDWithMovements(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	var c component.Component
	if err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindActiveByPartNumber finds an active component by its part number
func (r *GormComponentRepository) FindActiveByPartNumber(ctx context.Context, partNumber string) (*component.Component, error) {
	var c component.Component
	if err := r.db.WithContext(ctx).
		Where("part_number = ? AND is_active = ?", partNumber, true).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds active components matching the filter
func (r *GormComponentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]component.Component, error) {
	var components []component.Component
	query := r.applyFilter(r.activeQuery(ctx), filter)
	if err := query.Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// FindAllActive finds all active components without pagination
func (r *GormComponentRepository) FindAllActive(ctx context.Context) ([]component.Component, error) {
	var components []component.Component
	if err := r.activeQuery(ctx).Order("name ASC").Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// FindLowStock finds active components at or below their critical threshold
func (r *GormComponentRepository) FindLowStock(ctx context.Context) ([]component.Component, error) {
	var components []component.Component
	if err := r.activeQuery(ctx).
		Where("quantity <= critical_low_threshold").
		Order("quantity ASC").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// Count counts active components matching the filter
func (r *GormComponentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.activeQuery(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a component. Movements are append-only and
// persisted through the movement repository, never via the association.
// The partial unique index on active part numbers backs the service-level
// uniqueness check; a racing insert surfaces as ALREADY_EXISTS.
func (r *GormComponentRepository) Save(ctx context.Context, c *component.Component) error {
	if err := r.db.WithContext(ctx).Omit("Movements").Save(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "A component with this part number already exists")
		}
		return err
	}
	return nil
}

func (r *GormComponentRepository) activeQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&component.Component{}).
		Where("is_active = ?", true)
}

func (r *GormComponentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "name"
	if filter.OrderBy != "" && componentSortColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormComponentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "location":
			query = query.Where("location = ?", value)
		case "stock_status":
			switch component.StockStatus(value.(string)) {
			case component.StockStatusOutOfStock:
				query = query.Where("quantity <= 0")
			case component.StockStatusLowStock:
				query = query.Where("quantity > 0 AND quantity <= critical_low_threshold")
			case component.StockStatusInStock:
				query = query.Where("quantity > critical_low_threshold")
			}
		case "min_quantity":
			query = query.Where("quantity >= ?", value)
		case "max_quantity":
			query = query.Where("quantity <= ?", value)
		}
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(part_number) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	return query
}

var _ component.ComponentRepository = (*GormComponentRepository)(nil)
