package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
)

// SchemaHandler exposes table definition management.
type SchemaHandler struct {
	svc *services.ServiceManager
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(svc *services.ServiceManager) *SchemaHandler {
	return &SchemaHandler{svc: svc}
}

// CreateTableRequest is the payload of POST /api/apps/:appId/tables.
type CreateTableRequest struct {
	DisplayName string         `json:"display_name" binding:"required"`
	Fields      []models.Field `json:"fields"`
}

// Create handles POST /api/apps/:appId/tables
func (h *SchemaHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")

	var req CreateTableRequest
	if !BindJSON(c, &req) {
		return
	}

	schema, err := h.svc.Schemas.Create(c.Request.Context(), user.Namespace, appID, req.DisplayName, req.Fields, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"table": schema})
}

// List handles GET /api/apps/:appId/tables
func (h *SchemaHandler) List(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")

	HandleGetEnvelope(c, "tables", func() (interface{}, error) {
		return h.svc.Schemas.List(c.Request.Context(), user.Namespace, appID)
	})
}

// Get handles GET /api/apps/:appId/tables/:tableId
func (h *SchemaHandler) Get(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	HandleGetEnvelope(c, "table", func() (interface{}, error) {
		return h.svc.Schemas.Get(c.Request.Context(), user.Namespace, appID, tableID)
	})
}

// Delete handles DELETE /api/apps/:appId/tables/:tableId?confirm=true
func (h *SchemaHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")
	confirm := c.Query("confirm") == "true"

	deleted, err := h.svc.Schemas.Delete(c.Request.Context(), user.Namespace, appID, tableID, user.ID, confirm)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Table deleted successfully",
		"deleted_records": deleted,
	})
}
