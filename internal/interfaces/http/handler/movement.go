package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	componentapp "github.com/labstock/backend/internal/application/component"
	"github.com/labstock/backend/internal/interfaces/http/dto"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	BaseHandler
	movementService *componentapp.MovementService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService *componentapp.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// RegisterRoutes registers movement routes. Capability checks stay in the
// service because the required capability depends on the movement direction.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/components/:id/movements", h.Apply)
	rg.GET("/components/:id/movements", h.List)
	rg.POST("/movements/bulk", h.BulkApply)
}

type applyMovementRequest struct {
	Type     string `json:"type" binding:"required,oneof=inward outward"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason"`
	Project  string `json:"project"`
	Notes    string `json:"notes"`
}

type bulkMovementItemRequest struct {
	ComponentID uuid.UUID `json:"component_id" binding:"required"`
	Type        string    `json:"type" binding:"required,oneof=inward outward"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
	Notes       string    `json:"notes"`
}

type bulkMovementRequest struct {
	Reason  string                    `json:"reason"`
	Project string                    `json:"project"`
	Items   []bulkMovementItemRequest `json:"items" binding:"required,min=1,dive"`
}

type movementListRequest struct {
	dto.ListRequest
	Type string `form:"type" binding:"omitempty,oneof=inward outward"`
}

// Apply records one stock movement against a component
func (h *MovementHandler) Apply(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid component ID")
		return
	}

	var req applyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.movementService.Apply(c.Request.Context(), actorID, componentID, componentapp.ApplyMovementRequest{
		Type:     req.Type,
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Project:  req.Project,
		Notes:    req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// BulkApply records several movements in one call. Items succeed or fail
// independently; the response separates the two sets.
func (h *MovementHandler) BulkApply(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req bulkMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items := make([]componentapp.BulkMovementItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = componentapp.BulkMovementItem{
			ComponentID: item.ComponentID,
			Type:        item.Type,
			Quantity:    item.Quantity,
			Notes:       item.Notes,
		}
	}

	result, err := h.movementService.BulkApply(c.Request.Context(), actorID, componentapp.BulkMovementRequest{
		Reason:  req.Reason,
		Project: req.Project,
		Items:   items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns the movement history of a component, oldest first
func (h *MovementHandler) List(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid component ID")
		return
	}

	var req movementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	result, err := h.movementService.ListByComponent(c.Request.Context(), actorID, componentID, componentapp.MovementListFilter{
		Type:     req.Type,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
