package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
)

// BulkHandler exposes the batched record operations.
type BulkHandler struct {
	svc *services.ServiceManager
}

// NewBulkHandler creates a new BulkHandler.
func NewBulkHandler(svc *services.ServiceManager) *BulkHandler {
	return &BulkHandler{svc: svc}
}

// BulkRecordsRequest is the payload of the bulk create/update endpoints.
type BulkRecordsRequest struct {
	Records []models.Record `json:"records" binding:"required"`
}

// BulkDeleteRequest is the payload of the bulk delete endpoint.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Create handles POST /api/apps/:appId/tables/:tableId/records/bulk
func (h *BulkHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var req BulkRecordsRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Bulk.Create(c.Request.Context(), user.Namespace, appID, tableID, req.Records, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Update handles PATCH /api/apps/:appId/tables/:tableId/records/bulk
func (h *BulkHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var req BulkRecordsRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Bulk.Update(c.Request.Context(), user.Namespace, appID, tableID, req.Records, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete handles POST /api/apps/:appId/tables/:tableId/records/bulk-delete
func (h *BulkHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var req BulkDeleteRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Bulk.Delete(c.Request.Context(), user.Namespace, appID, tableID, req.IDs, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
