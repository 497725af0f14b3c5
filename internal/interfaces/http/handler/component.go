package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	componentapp "github.com/labstock/backend/internal/application/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// ComponentHandler handles component catalog endpoints
type ComponentHandler struct {
	BaseHandler
	componentService *componentapp.ComponentService
}

// NewComponentHandler creates a new ComponentHandler
func NewComponentHandler(componentService *componentapp.ComponentService) *ComponentHandler {
	return &ComponentHandler{componentService: componentService}
}

// RegisterRoutes registers component routes
func (h *ComponentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	components := rg.Group("/components")
	{
		components.GET("", h.List)
		components.GET("/low-stock", h.ListLowStock)
		components.GET("/:id", h.GetByID)
		components.POST("", middleware.RequireCapability(identity.CapabilityEdit), h.Create)
		components.PUT("/:id", middleware.RequireCapability(identity.CapabilityEdit), h.Update)
		components.DELETE("/:id", middleware.RequireCapability(identity.CapabilityEdit), h.Deactivate)
	}
}

type createComponentRequest struct {
	Name                 string  `json:"name" binding:"required"`
	PartNumber           string  `json:"part_number" binding:"required"`
	Manufacturer         string  `json:"manufacturer" binding:"required"`
	Category             string  `json:"category" binding:"required"`
	Description          string  `json:"description"`
	Quantity             int64   `json:"quantity" binding:"min=0"`
	UnitPrice            float64 `json:"unit_price" binding:"min=0"`
	CriticalLowThreshold int64   `json:"critical_low_threshold" binding:"min=0"`
	Location             string  `json:"location"`
}

type updateComponentRequest struct {
	Name                 *string  `json:"name"`
	PartNumber           *string  `json:"part_number"`
	Manufacturer         *string  `json:"manufacturer"`
	Category             *string  `json:"category"`
	Description          *string  `json:"description"`
	UnitPrice            *float64 `json:"unit_price"`
	CriticalLowThreshold *int64   `json:"critical_low_threshold"`
	Location             *string  `json:"location"`
}

type componentListRequest struct {
	dto.ListRequest
	Category    string `form:"category"`
	Location    string `form:"location"`
	StockStatus string `form:"stock_status" binding:"omitempty,oneof=in_stock low_stock out_of_stock"`
	MinQuantity *int64 `form:"min_quantity"`
	MaxQuantity *int64 `form:"max_quantity"`
}

// Create registers a new component
func (h *ComponentHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req createComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.componentService.Create(c.Request.Context(), actorID, componentapp.CreateComponentRequest{
		Name:                 req.Name,
		PartNumber:           req.PartNumber,
		Manufacturer:         req.Manufacturer,
		Category:             req.Category,
		Description:          req.Description,
		Quantity:             req.Quantity,
		UnitPrice:            decimal.NewFromFloat(req.UnitPrice),
		CriticalLowThreshold: req.CriticalLowThreshold,
		Location:             req.Location,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Update modifies a component's non-ledger fields
func (h *ComponentHandler) Update(c *gin.Context) {
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

	var req updateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	var unitPrice *decimal.Decimal
	if req.UnitPrice != nil {
		p := decimal.NewFromFloat(*req.UnitPrice)
		unitPrice = &p
	}

	result, err := h.componentService.Update(c.Request.Context(), actorID, componentID, componentapp.UpdateComponentRequest{
		Name:                 req.Name,
		PartNumber:           req.PartNumber,
		Manufacturer:         req.Manufacturer,
		Category:             req.Category,
		Description:          req.Description,
		UnitPrice:            unitPrice,
		CriticalLowThreshold: req.CriticalLowThreshold,
		Location:             req.Location,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Deactivate retires a component from the active catalog. Movement history
// is retained and the part number is freed for reuse.
func (h *ComponentHandler) Deactivate(c *gin.Context) {
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

	if err := h.componentService.Deactivate(c.Request.Context(), actorID, componentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns one component
func (h *ComponentHandler) GetByID(c *gin.Context) {
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

	result, err := h.componentService.GetByID(c.Request.Context(), actorID, componentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns active components matching the filter
func (h *ComponentHandler) List(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req componentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	result, err := h.componentService.List(c.Request.Context(), actorID, componentapp.ComponentListFilter{
		Category:    req.Category,
		Location:    req.Location,
		StockStatus: req.StockStatus,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		Search:      req.Search,
		Page:        req.Page,
		PageSize:    req.PageSize,
		OrderBy:     req.OrderBy,
		OrderDir:    req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListLowStock returns components at or below their critical threshold
func (h *ComponentHandler) ListLowStock(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.componentService.ListLowStock(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
