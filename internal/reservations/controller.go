package reservations

import (
	"errors"
	"net/http"
	"time"

	"parkwise/internal/waitlist"

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
	case errors.Is(err, ErrReservationNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSpotUnavailable):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSpotInactive):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyCancelled):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotReservationOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to act on this reservation"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateReservation handles POST /api/v1/reservations
func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.CreateReservation(ctx.Request.Context(), userID, req.SpotID, req.ParsedDate())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Reservation confirmed",
		"data":    reservation,
	})
}

// GetReservation handles GET /api/v1/reservations/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	reservationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.GetReservation(ctx.Request.Context(), userID, reservationID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": reservation})
}

// ListReservations handles GET /api/v1/reservations
func (c *Controller) ListReservations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var from time.Time
	if fromStr := ctx.Query("from"); fromStr != "" {
		parsed, err := time.Parse(waitlist.DateLayout, fromStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}

	reservations, err := c.service.GetUserReservations(ctx.Request.Context(), userID, from)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": reservations})
}

// CancelReservation handles DELETE /api/v1/reservations/:id
func (c *Controller) CancelReservation(ctx *gin.Context) {
	reservationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.CancelReservation(ctx.Request.Context(), userID, reservationID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Reservation cancelled",
	})
}
