package incidents

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

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}
	return userID, true
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrIncidentNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIncidentClosed):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoReservation):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ReportIncident handles POST /api/v1/incidents
func (c *Controller) ReportIncident(ctx *gin.Context) {
	var req ReportIncidentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	reporterID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.service.Report(ctx.Request.Context(), reporterID, req.ParsedDate(), req.LicensePlate, req.PhotoURL)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Incident reported",
		"data":    result,
	})
}

// ListMyIncidents handles GET /api/v1/incidents
func (c *Controller) ListMyIncidents(ctx *gin.Context) {
	reporterID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	incidents, err := c.service.ListMyIncidents(ctx.Request.Context(), reporterID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": incidents})
}

// Admin handlers

// ListIncidents handles GET /api/v1/admin/incidents
func (c *Controller) ListIncidents(ctx *gin.Context) {
	var status IncidentStatus
	if statusStr := ctx.Query("status"); statusStr != "" {
		status = IncidentStatus(statusStr)
	}

	var since time.Time
	if sinceStr := ctx.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since timestamp, expected RFC3339"})
			return
		}
		since = parsed
	}

	incidents, err := c.service.ListIncidents(ctx.Request.Context(), status, since)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": incidents})
}

// GetIncident handles GET /api/v1/admin/incidents/:id
func (c *Controller) GetIncident(ctx *gin.Context) {
	incidentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	incident, err := c.service.GetIncident(ctx.Request.Context(), incidentID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": incident})
}

// ConfirmIncident handles POST /api/v1/admin/incidents/:id/confirm
func (c *Controller) ConfirmIncident(ctx *gin.Context) {
	incidentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	adminID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	incident, err := c.service.Confirm(ctx.Request.Context(), adminID, incidentID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Incident confirmed",
		"data":    incident,
	})
}

// DismissIncident handles POST /api/v1/admin/incidents/:id/dismiss
func (c *Controller) DismissIncident(ctx *gin.Context) {
	incidentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	adminID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	incident, err := c.service.Dismiss(ctx.Request.Context(), adminID, incidentID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Incident dismissed",
		"data":    incident,
	})
}
