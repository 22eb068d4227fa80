package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
)

// CSVHandler exposes delimited-text import and export.
type CSVHandler struct {
	svc *services.ServiceManager
}

// NewCSVHandler creates a new CSVHandler.
func NewCSVHandler(svc *services.ServiceManager) *CSVHandler {
	return &CSVHandler{svc: svc}
}

// readUpload pulls the multipart "file" part into memory after the upload
// guard has accepted its size and declared type.
func (h *CSVHandler) readUpload(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondAppError(c, errors.NewCSVParseError("missing file upload"))
		return "", false
	}

	if err := h.svc.CSV.CheckUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), int(fileHeader.Size)); err != nil {
		RespondAppError(c, err)
		return "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondAppError(c, errors.NewInternalError("failed to open upload", err))
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(fileHeader.Size)))
	if err != nil {
		RespondAppError(c, errors.NewInternalError("failed to read upload", err))
		return "", false
	}
	return string(data), true
}

// ImportNew handles POST /api/apps/:appId/tables/import
// Form fields: file (multipart), table_name.
func (h *CSVHandler) ImportNew(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableName := c.PostForm("table_name")

	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.svc.CSV.ImportNew(c.Request.Context(), user.Namespace, appID, tableName, data, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ImportAppend handles POST /api/apps/:appId/tables/:tableId/import
func (h *CSVHandler) ImportAppend(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.svc.CSV.ImportAppend(c.Request.Context(), user.Namespace, appID, tableID, data, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportRequest is the payload of the export endpoint.
type ExportRequest struct {
	RecordIDs           []string `json:"record_ids"`
	IncludeSystemFields bool     `json:"include_system_fields"`
}

// Export handles POST /api/apps/:appId/tables/:tableId/export
func (h *CSVHandler) Export(c *gin.Context) {
	user := GetUserFromContext(c)
	appID := c.Param("appId")
	tableID := c.Param("tableId")

	var req ExportRequest
	if c.Request.ContentLength > 0 && !BindJSON(c, &req) {
		return
	}

	result, err := h.svc.CSV.Export(c.Request.Context(), user.Namespace, appID, tableID, services.ExportOptions{
		RecordIDs:           req.RecordIDs,
		IncludeSystemFields: req.IncludeSystemFields,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
