package waitlist

import (
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes configures all waitlist-related routes following the same pattern as other modules
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller *Controller) {
	waitlist := rg.Group("/waitlist")
	{
		// Health check - no auth required
		waitlist.GET("/health", controller.HealthCheck)

		// Authenticated user operations
		authenticated := waitlist.Group("")
		authenticated.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "MANAGER", "ADMIN"))
		{
			authenticated.POST("", controller.Register)
			authenticated.GET("/status", controller.GetStatus)
			authenticated.DELETE("/entries/:entry_id", controller.CancelEntry)
			authenticated.POST("/offers/:offer_id/accept", controller.AcceptOffer)
			authenticated.POST("/offers/:offer_id/reject", controller.RejectOffer)
		}
	}

	// Admin waitlist routes
	adminWaitlist := rg.Group("/admin/waitlist")
	adminWaitlist.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminWaitlist.GET("/entries", controller.ListEntries)
		adminWaitlist.GET("/settings", controller.GetSettings)
		adminWaitlist.PUT("/settings", controller.UpdateSettings)
		adminWaitlist.GET("/penalties/:user_id", controller.GetPenalty)
		adminWaitlist.DELETE("/penalties/:user_id", controller.UnblockUser)
		adminWaitlist.POST("/advance", controller.AdvanceQueue)
		adminWaitlist.POST("/sweep", controller.SweepExpired)
	}
}
