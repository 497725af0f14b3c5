package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/notification"
)

// CreateNotificationRequest carries the fields for a manual notification.
// Only administrators create notifications directly; the alert engine
// bypasses this service and writes through the repository.
type CreateNotificationRequest struct {
	Type               string      `json:"type"`
	Title              string      `json:"title"`
	Message            string      `json:"message"`
	Priority           string      `json:"priority"`
	Category           string      `json:"category"`
	TargetUserIDs      []uuid.UUID `json:"target_user_ids"`
	TargetRoles        []string    `json:"target_roles"`
	RelatedComponentID *uuid.UUID  `json:"related_component_id"`
	ExpiresAt          *time.Time  `json:"expires_at"`
}

// ListNotificationsFilter narrows the inbox listing
type ListNotificationsFilter struct {
	UnreadOnly bool
	Type       string
	Category   string
	Priority   string
	Page       int
	PageSize   int
}

// NotificationResponse is the read model for a notification, personalized
// with the requesting user's read state
type NotificationResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Type               string                `json:"type"`
	Title              string                `json:"title"`
	Message            string                `json:"message"`
	Priority           string                `json:"priority"`
	Category           string                `json:"category"`
	RelatedComponentID *uuid.UUID            `json:"related_component_id,omitempty"`
	Metadata           notification.Metadata `json:"metadata"`
	IsRead             bool                  `json:"is_read"`
	CreatedAt          time.Time             `json:"created_at"`
	ExpiresAt          time.Time             `json:"expires_at"`
}

// ToNotificationResponse maps a notification to its read model for one user
func ToNotificationResponse(n *notification.Notification, userID uuid.UUID) NotificationResponse {
	return NotificationResponse{
		ID:                 n.ID,
		Type:               string(n.Type),
		Title:              n.Title,
		Message:            n.Message,
		Priority:           string(n.Priority),
		Category:           string(n.Category),
		RelatedComponentID: n.RelatedComponentID,
		Metadata:           n.Metadata,
		IsRead:             n.IsReadBy(userID),
		CreatedAt:          n.CreatedAt,
		ExpiresAt:          n.ExpiresAt,
	}
}
