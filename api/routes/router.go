// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/incidents"
	"parkwise/internal/notifications"
	"parkwise/internal/parking"
	"parkwise/internal/reservations"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/users"
	"parkwise/internal/waitlist"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.Service

	// Services wired across modules
	waitlistService waitlist.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Service) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// WaitlistService exposes the wired waitlist service for the background
// sweeper. Valid after SetupRoutes.
func (r *Router) WaitlistService() waitlist.Service {
	return r.waitlistService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()

	// Shared services
	auditService := audit.NewService(audit.NewRepository(pg))
	userService := users.NewService(users.NewRepository(pg))
	parkingService := parking.NewService(parking.NewRepository(pg))

	// The reservations service is constructed first and receives the
	// waitlist advancer afterwards; the waitlist service needs reservations
	// at construction to create them inside the accept transaction
	reservationService := reservations.NewService(
		reservations.NewRepository(pg), parkingService, auditService)

	waitlistService := waitlist.NewService(
		waitlist.NewRepository(pg, r.db.GetRedisClient()),
		parkingService, userService, reservationService,
		r.notifier, auditService)
	reservationService.SetWaitlistService(waitlistService)
	r.waitlistService = waitlistService

	incidentService := incidents.NewService(
		incidents.NewRepository(pg), reservationService, parkingService,
		userService, r.notifier, auditService)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		parking.SetupParkingRoutes(api, parking.NewController(parkingService))
		waitlist.SetupWaitlistRoutes(api, waitlist.NewController(waitlistService))
		reservations.SetupReservationRoutes(api, reservations.NewController(reservationService))
		incidents.SetupIncidentRoutes(api, incidents.NewController(incidentService))
		audit.SetupAuditRoutes(api, audit.NewController(auditService))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "parkwise-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "parkwise-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
