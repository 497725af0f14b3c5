package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priorityOrder sorts high before medium before low
const priorityOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, created_at DESC"

// unreadCondition matches notifications without a read receipt for the user
const unreadCondition = "NOT EXISTS (SELECT 1 FROM notification_reads WHERE notification_reads.notification_id = notifications.id AND notification_reads.user_id = ?)"

// GormNotificationRepository implements NotificationRepository using GORM.
// Target sets are stored as JSON text; membership checks match the quoted
// element, which is exact for UUIDs and role names.
type GormNotificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db, now: time.Now}
}

// SetClock overrides the time source, for tests
func (r *GormNotificationRepository) SetClock(now func() time.Time) {
	r.now = now
}

// FindByID finds a notification by ID with its read receipts loaded
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).
		Preload("ReadBy").
		First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// FindVisible returns notifications visible to the user, sorted by priority
// descending then creation time descending
func (r *GormNotificationRepository) FindVisible(ctx context.Context, userID uuid.UUID, role identity.Role, filter notification.ListFilter) ([]notification.Notification, int64, error) {
	query := r.visibleQuery(ctx, userID, role)

	if filter.UnreadOnly {
		query = query.Where(unreadCondition, userID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var notifications []notification.Notification
	if err := query.
		Preload("ReadBy").
		Order(priorityOrder).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts visible notifications without a read receipt for the user
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID, role identity.Role) (int64, error) {
	var count int64
	if err := r.visibleQuery(ctx, userID, role).
		Where(unreadCondition, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsRecentForComponent reports whether an active, unexpired notification
// of the category referencing the component was created at or after since
func (r *GormNotificationRepository) ExistsRecentForComponent(ctx context.Context, category notification.Category, componentID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("is_active = ?", true).
		Where("expires_at > ?", r.now()).
		Where("category = ?", category).
		Where("related_component_id = ?", componentID).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a notification. Read receipts are append-only;
// existing receipts are never rewritten.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ReadBy").Save(n).Error; err != nil {
			return err
		}
		if len(n.ReadBy) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&n.ReadBy).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteExpiredBefore physically removes notifications expired before the
// cutoff, with their read receipts; returns the number removed
func (r *GormNotificationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("notification_id IN (?)", tx.Model(&notification.Notification{}).
				Select("id").
				Where("expires_at < ?", cutoff)).
			Delete(&notification.ReadReceipt{}).Error; err != nil {
			return err
		}

		result := tx.Where("expires_at < ?", cutoff).Delete(&notification.Notification{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}

func (r *GormNotificationRepository) visibleQuery(ctx context.Context, userID uuid.UUID, role identity.Role) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("is_active = ?", true).
		Where("expires_at > ?", r.now()).
		Where("target_user_ids LIKE ? OR target_roles LIKE ?",
			`%"`+userID.String()+`"%`, `%"`+string(role)+`"%`)
}

var _ notification.NotificationRepository = (*GormNotificationRepository)(nil)
