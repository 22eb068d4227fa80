package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
)

// RecordHandler exposes the per-table record lifecycle.
type RecordHandler struct {
	svc *services.ServiceManager
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(svc *services.ServiceManager) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Create handles POST /api/apps/:appId/tables/:tableId/records
func (h *RecordHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var data models.Record
	if !BindJSON(c, &data) {
		return
	}

	record, err := h.svc.Records.Create(c.Request.Context(), user.Namespace, appID, tableID, data, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// Get handles GET /api/apps/:appId/tables/:tableId/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")
	id := c.Param("id")

	HandleGetEnvelope(c, "record", func() (interface{}, error) {
		return h.svc.Records.Get(c.Request.Context(), user.Namespace, appID, tableID, id)
	})
}

// List handles GET /api/apps/:appId/tables/:tableId/records
// Query params: page, page_size, sort_by, sort_order, search.
func (h *RecordHandler) List(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	opts := services.ListOptions{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Page:      page,
		PageSize:  pageSize,
		Search:    c.Query("search"),
	}

	result, err := h.svc.Records.List(c.Request.Context(), user.Namespace, appID, tableID, opts)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update handles PATCH /api/apps/:appId/tables/:tableId/records/:id
func (h *RecordHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")
	id := c.Param("id")

	var data models.Record
	if !BindJSON(c, &data) {
		return
	}

	record, err := h.svc.Records.Update(c.Request.Context(), user.Namespace, appID, tableID, id, data, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// Delete handles DELETE /api/apps/:appId/tables/:tableId/records/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")
	id := c.Param("id")

	if err := h.svc.Records.Delete(c.Request.Context(), user.Namespace, appID, tableID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// Validate handles POST /api/apps/:appId/tables/:tableId/records/validate
func (h *RecordHandler) Validate(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var data models.Record
	if !BindJSON(c, &data) {
		return
	}

	result, err := h.svc.Records.Validate(c.Request.Context(), user.Namespace, appID, tableID, data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
