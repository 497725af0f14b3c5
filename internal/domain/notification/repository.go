package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
)

// ListFilter narrows a visible-notification listing
type ListFilter struct {
	UnreadOnly bool
	Type       *Type
	Category   *Category
	Priority   *Priority
	Page       int
	PageSize   int
}

// NotificationRepository defines the persistence interface for notifications
type NotificationRepository interface {
	// FindByID finds a notification by ID with its read receipts loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindVisible returns notifications visible to the user per the targeting
	// rule, sorted by priority descending then creation time descending,
	// paginated. Returns the page and the total visible count.
	FindVisible(ctx context.Context, userID uuid.UUID, role identity.Role, filter ListFilter) ([]Notification, int64, error)

	// CountUnread counts visible notifications without a read receipt for the user
	CountUnread(ctx context.Context, userID uuid.UUID, role identity.Role) (int64, error)

	// ExistsRecentForComponent reports whether an active, unexpired
	// notification of the given category referencing the component was
	// created at or after since. Used for alert deduplication.
	ExistsRecentForComponent(ctx context.Context, category Category, componentID uuid.UUID, since time.Time) (bool, error)

	// Save creates or updates a notification with its read receipts
	Save(ctx context.Context, n *Notification) error

	// DeleteExpiredBefore physically removes notifications whose expiry is
	// older than the cutoff; returns the number removed
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
