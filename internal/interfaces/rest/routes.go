package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/interfaces/middleware"
)

// RegisterRoutes mounts every API endpoint on the router. All data routes
// require an authenticated session.
func RegisterRoutes(router *gin.Engine, svc *services.ServiceManager) {
	schemas := NewSchemaHandler(svc)
	records := NewRecordHandler(svc)
	bulk := NewBulkHandler(svc)
	csv := NewCSVHandler(svc)

	api := router.Group("/api", middleware.RequireAuth())
	{
		apps := api.Group("/apps/:appId")

		apps.POST("/tables", schemas.Create)
		apps.GET("/tables", schemas.List)
		apps.POST("/tables/import", csv.ImportNew)
		apps.GET("/tables/:tableId", schemas.Get)
		apps.DELETE("/tables/:tableId", schemas.Delete)

		apps.POST("/tables/:tableId/records", records.Create)
		apps.GET("/tables/:tableId/records", records.List)
		apps.POST("/tables/:tableId/records/validate", records.Validate)
		apps.POST("/tables/:tableId/records/bulk", bulk.Create)
		apps.PATCH("/tables/:tableId/records/bulk", bulk.Update)
		apps.POST("/tables/:tableId/records/bulk-delete", bulk.Delete)
		apps.GET("/tables/:tableId/records/:id", records.Get)
		apps.PATCH("/tables/:tableId/records/:id", records.Update)
		apps.DELETE("/tables/:tableId/records/:id", records.Delete)

		apps.POST("/tables/:tableId/import", csv.ImportAppend)
		apps.POST("/tables/:tableId/export", csv.Export)
	}
}
