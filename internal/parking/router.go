package parking

import (
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupParkingRoutes configures the parking inventory routes
func SetupParkingRoutes(rg *gin.RouterGroup, controller *Controller) {
	parking := rg.Group("/parking")
	parking.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "MANAGER", "ADMIN"))
	{
		parking.GET("/groups", controller.ListGroups)
		parking.GET("/groups/:group_id/spots", controller.ListSpots)
		parking.GET("/spots/:spot_id", controller.GetSpot)
	}
}
