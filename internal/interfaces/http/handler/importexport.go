package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	importexportapp "github.com/labstock/backend/internal/application/importexport"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// ImportExportHandler handles CSV import and export of the component catalog
type ImportExportHandler struct {
	BaseHandler
	csvService *importexportapp.ComponentCSVService
}

// NewImportExportHandler creates a new ImportExportHandler
func NewImportExportHandler(csvService *importexportapp.ComponentCSVService) *ImportExportHandler {
	return &ImportExportHandler{csvService: csvService}
}

// RegisterRoutes registers import/export routes
func (h *ImportExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	components := rg.Group("/components")
	{
		components.POST("/import", middleware.RequireCapability(identity.CapabilityEdit), h.Import)
		components.GET("/export", middleware.RequireCapability(identity.CapabilityReports), h.Export)
	}
}

// Import reads a multipart CSV upload and creates one component per valid
// row. Row failures are reported per line and never abort the rest.
func (h *ImportExportHandler) Import(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.csvService.Import(c.Request.Context(), actorID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Export streams the active component catalog as a CSV download
func (h *ImportExportHandler) Export(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var buf bytes.Buffer
	if _, err := h.csvService.Export(c.Request.Context(), actorID, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("components-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
