package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
)

// Type represents the visual tone of a notification
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"
)

// IsValid returns true if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	}
	return false
}

// Priority represents notification urgency
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid returns true if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns the numeric ordering of the priority (high=3, medium=2, low=1)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Category is the closed set of notification categories
type Category string

const (
	CategoryLowStock      Category = "low_stock"
	CategoryOldStock      Category = "old_stock"
	CategoryStockMovement Category = "stock_movement"
	CategoryUserActivity  Category = "user_activity"
	CategorySystem        Category = "system"
)

// IsValid returns true if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryLowStock, CategoryOldStock, CategoryStockMovement,
		CategoryUserActivity, CategorySystem:
		return true
	}
	return false
}

// DefaultExpiry is the default notification lifetime
const DefaultExpiry = 30 * 24 * time.Hour

// ReadReceipt records that a user has read a notification. Append-only.
type ReadReceipt struct {
	NotificationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReadReceipt) TableName() string {
	return "notification_reads"
}

// Notification is an alert or message delivered to targeted users or roles.
// It is soft-deleted rather than removed and becomes invisible once expired.
type Notification struct {
	shared.BaseAggregateRoot
	Type     Type     `gorm:"type:varchar(10);not null"`
	Title    string   `gorm:"type:varchar(200);not null"`
	Message  string   `gorm:"type:varchar(2000);not null"`
	Priority Priority `gorm:"type:varchar(10);not null;default:'medium'"`
	Category Category `gorm:"type:varchar(20);not null;index"`

	// Back-references for display enrichment only; never owned
	RelatedComponentID *uuid.UUID `gorm:"type:uuid;index"`
	RelatedUserID      *uuid.UUID `gorm:"type:uuid"`

	TargetUserIDs []uuid.UUID     `gorm:"serializer:json;type:text"`
	TargetRoles   []identity.Role `gorm:"serializer:json;type:text"`
	ReadBy        []ReadReceipt   `gorm:"foreignKey:NotificationID;references:ID"`

	Metadata  Metadata  `gorm:"serializer:json;type:text"`
	IsActive  bool      `gorm:"not null;default:true;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates a notification with defaults applied: medium priority when
// unset, expiry 30 days from creation when unset, empty read set.
func New(notificationType Type, title, message string, category Category) (*Notification, error) {
	if !notificationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown notification category")
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title is required and cannot exceed 200 characters")
	}
	if message == "" || len(message) > 2000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message is required and cannot exceed 2000 characters")
	}

	n := &Notification{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              notificationType,
		Title:             title,
		Message:           message,
		Priority:          PriorityMedium,
		Category:          category,
		TargetUserIDs:     make([]uuid.UUID, 0),
		TargetRoles:       make([]identity.Role, 0),
		ReadBy:            make([]ReadReceipt, 0),
	}
	n.ExpiresAt = n.CreatedAt.Add(DefaultExpiry)

	return n, nil
}

// SetPriority overrides the default medium priority
func (n *Notification) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Unknown notification priority")
	}
	n.Priority = p
	return nil
}

// SetExpiry overrides the default 30 day expiry
func (n *Notification) SetExpiry(at time.Time) error {
	if at.Before(n.CreatedAt) {
		return shared.NewDomainError("INVALID_EXPIRY", "Expiry cannot be before creation")
	}
	n.ExpiresAt = at
	return nil
}

// TargetUser adds a user to the notification's target set
func (n *Notification) TargetUser(userID uuid.UUID) {
	for _, id := range n.TargetUserIDs {
		if id == userID {
			return
		}
	}
	n.TargetUserIDs = append(n.TargetUserIDs, userID)
}

// TargetRole adds a role to the notification's target set
func (n *Notification) TargetRole(role identity.Role) {
	for _, r := range n.TargetRoles {
		if r == role {
			return
		}
	}
	n.TargetRoles = append(n.TargetRoles, role)
}

// RelateComponent records a non-owning component back-reference
func (n *Notification) RelateComponent(componentID uuid.UUID) {
	n.RelatedComponentID = &componentID
}

// RelateUser records a non-owning user back-reference
func (n *Notification) RelateUser(userID uuid.UUID) {
	n.RelatedUserID = &userID
}

// IsExpired returns true once the notification passed its expiry
func (n *Notification) IsExpired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// IsVisibleTo implements the targeting rule: active, unexpired, and the user
// is targeted directly or via their role
func (n *Notification) IsVisibleTo(userID uuid.UUID, role identity.Role, now time.Time) bool {
	if !n.IsActive || n.IsExpired(now) {
		return false
	}
	return n.IsTargeted(userID, role)
}

// IsTargeted returns true if the user is in the target set directly or by role
func (n *Notification) IsTargeted(userID uuid.UUID, role identity.Role) bool {
	for _, id := range n.TargetUserIDs {
		if id == userID {
			return true
		}
	}
	for _, r := range n.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsReadBy returns true if the user has already read the notification
func (n *Notification) IsReadBy(userID uuid.UUID) bool {
	for _, r := range n.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MarkRead appends a read receipt for the user. Idempotent: a second call
// for the same user leaves exactly one receipt and reports no change.
func (n *Notification) MarkRead(userID uuid.UUID, at time.Time) bool {
	if n.IsReadBy(userID) {
		return false
	}
	n.ReadBy = append(n.ReadBy, ReadReceipt{
		NotificationID: n.ID,
		UserID:         userID,
		ReadAt:         at,
	})
	n.touch()
	return true
}

// Deactivate soft-deletes the notification. Only an admin or a directly or
// role-targeted user may do this; the caller check lives in the service.
func (n *Notification) Deactivate() error {
	if !n.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Notification is already inactive")
	}
	n.IsActive = false
	n.touch()
	return nil
}

func (n *Notification) touch() {
	n.UpdatedAt = time.Now()
	n.IncrementVersion()
}
