package reservations

import (
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes configures all reservation-related routes
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {
	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "MANAGER", "ADMIN"))
	{
		reservations.POST("", controller.CreateReservation)
		reservations.GET("", controller.ListReservations)
		reservations.GET("/:id", controller.GetReservation)
		reservations.DELETE("/:id", controller.CancelReservation)
	}
}
