package parking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListGroups handles GET /api/v1/parking/groups
func (c *Controller) ListGroups(ctx *gin.Context) {
	groups, err := c.service.ListGroups(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": groups})
}

// ListSpots handles GET /api/v1/parking/groups/:group_id/spots
func (c *Controller) ListSpots(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("group_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	// With ?date=YYYY-MM-DD only the spots still free for that date are
	// returned
	if dateStr := ctx.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		spots, err := c.service.ListFreeSpots(ctx.Request.Context(), groupID, date)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": spots})
		return
	}

	spots, err := c.service.ListSpotsByGroup(ctx.Request.Context(), groupID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": spots})
}

// GetSpot handles GET /api/v1/parking/spots/:spot_id
func (c *Controller) GetSpot(ctx *gin.Context) {
	spotID, err := uuid.Parse(ctx.Param("spot_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot ID"})
		return
	}

	spot, err := c.service.GetSpot(ctx.Request.Context(), spotID)
	if err != nil {
		if errors.Is(err, ErrSpotNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": spot})
}
