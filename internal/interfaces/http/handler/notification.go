package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	alertapp "github.com/labstock/backend/internal/application/alert"
	notificationapp "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// NotificationHandler handles the notification inbox endpoints
type NotificationHandler struct {
	BaseHandler
	notificationService *notificationapp.NotificationService
	alertEngine         *alertapp.AlertEngine
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *notificationapp.NotificationService, alertEngine *alertapp.AlertEngine) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		alertEngine:         alertEngine,
	}
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("", middleware.RequireRole(identity.RoleAdmin), h.Create)
		notifications.POST("/check-alerts", middleware.RequireRole(identity.RoleAdmin), h.CheckAlerts)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.DELETE("/:id", h.Delete)
	}
}

type createNotificationRequest struct {
	Type               string      `json:"type" binding:"required"`
	Title              string      `json:"title" binding:"required"`
	Message            string      `json:"message" binding:"required"`
	Priority           string      `json:"priority"`
	Category           string      `json:"category" binding:"required"`
	TargetUserIDs      []uuid.UUID `json:"target_user_ids"`
	TargetRoles        []string    `json:"target_roles"`
	RelatedComponentID *uuid.UUID  `json:"related_component_id"`
	ExpiresAt          *time.Time  `json:"expires_at"`
}

type notificationListRequest struct {
	dto.ListRequest
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Category   string `form:"category"`
	Priority   string `form:"priority"`
}

// Create publishes a manual notification. Admin only.
func (h *NotificationHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.notificationService.Create(c.Request.Context(), actorID, notificationapp.CreateNotificationRequest{
		Type:               req.Type,
		Title:              req.Title,
		Message:            req.Message,
		Priority:           req.Priority,
		Category:           req.Category,
		TargetUserIDs:      req.TargetUserIDs,
		TargetRoles:        req.TargetRoles,
		RelatedComponentID: req.RelatedComponentID,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// CheckAlerts runs the low-stock and old-stock scans on demand. Admin only.
// The same suppression windows apply as for scheduled scans, so repeated
// checks do not duplicate alerts.
func (h *NotificationHandler) CheckAlerts(c *gin.Context) {
	lowStock, err := h.alertEngine.ScanLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	oldStock, err := h.alertEngine.ScanOldStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"low_stock_alerts": lowStock,
		"old_stock_alerts": oldStock,
	})
}

// List returns the caller's visible notifications, high priority first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req notificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	result, err := h.notificationService.List(c.Request.Context(), userID, notificationapp.ListNotificationsFilter{
		UnreadOnly: req.UnreadOnly,
		Type:       req.Type,
		Category:   req.Category,
		Priority:   req.Priority,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"unread_count": count})
}

// MarkRead marks one notification as read for the caller
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MarkAllRead marks every visible notification as read for the caller
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	marked, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"marked": marked})
}

// Delete deactivates a notification. Allowed for administrators and for
// users the notification targets.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), userID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
