package audit

import (
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuditRoutes configures the admin audit trail routes
func SetupAuditRoutes(rg *gin.RouterGroup, controller *Controller) {
	adminAudit := rg.Group("/admin/audit")
	adminAudit.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminAudit.GET("", controller.List)
	}
}
