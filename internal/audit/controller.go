package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{
		service: service,
	}
}

// List returns the most recent audit entries, newest first. All filters are
// optional query parameters.
func (c *Controller) List(ctx *gin.Context) {
	filter := ListFilter{
		Action: ctx.Query("action"),
	}

	if userIDStr := ctx.Query("user_id"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid user_id format",
			})
			return
		}
		filter.UserID = userID
	}

	if entityIDStr := ctx.Query("entity_id"); entityIDStr != "" {
		entityID, err := uuid.Parse(entityIDStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid entity_id format",
			})
			return
		}
		filter.EntityID = entityID
	}

	if sinceStr := ctx.Query("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid since format, expected RFC3339",
			})
			return
		}
		filter.Since = since
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		filter.Limit = limit
	}

	entries, err := c.service.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list audit entries",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
