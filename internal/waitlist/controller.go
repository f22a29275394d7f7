package waitlist

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
	return &Controller{
		service: service,
	}
}

// currentUserID extracts the authenticated user from the request context
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return uuid.Nil, false
	}
	return userID, true
}

// respondError maps service errors to HTTP responses
func respondError(ctx *gin.Context, err error) {
	var blocked *BlockedError
	var limit *LimitError
	var invalid ErrInvalidSettings

	switch {
	case errors.As(err, &blocked):
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":         "You are temporarily blocked from the waitlist",
			"blocked_until": blocked.BlockedUntil.Format(time.RFC3339),
		})
	case errors.As(err, &limit):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"limit":     limit.Limit,
			"remaining": limit.Remaining(),
		})
	case errors.As(err, &invalid):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, ErrWaitlistDisabled):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": "The waitlist is currently disabled",
		})
	case errors.Is(err, ErrOfferExpired):
		ctx.JSON(http.StatusGone, gin.H{
			"error": "The offer has expired",
		})
	case errors.Is(err, ErrOfferAlreadyResolved):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": "The offer has already been resolved",
		})
	case errors.Is(err, ErrAlreadyQueued):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, ErrEntryNotCancellable):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, ErrNotAuthorized):
		ctx.JSON(http.StatusForbidden, gin.H{
			"error": "You are not allowed to act on this resource",
		})
	case errors.Is(err, ErrOfferNotFound), errors.Is(err, ErrEntryNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (c *Controller) Register(ctx *gin.Context) {
	var request RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
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

	result, err := c.service.Register(ctx.Request.Context(), userID, request.GroupIDs, request.ParsedDate())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Waitlist registration processed",
		"data":    result,
	})
}

func (c *Controller) CancelEntry(ctx *gin.Context) {
	entryID, err := uuid.Parse(ctx.Param("entry_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid entry ID",
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.CancelEntry(ctx.Request.Context(), userID, entryID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Waitlist entry cancelled",
	})
}

func (c *Controller) GetStatus(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	status, err := c.service.GetUserStatus(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": NewStatusResponse(status, time.Now()),
	})
}

func (c *Controller) AcceptOffer(ctx *gin.Context) {
	offerID, err := uuid.Parse(ctx.Param("offer_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid offer ID",
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.service.AcceptOffer(ctx.Request.Context(), userID, offerID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Offer accepted",
		"data": AcceptResponse{
			ReservationID:   result.ReservationID,
			SpotID:          result.Offer.SpotID,
			ReservationDate: result.Offer.ReservationDate.Format(DateLayout),
		},
	})
}

func (c *Controller) RejectOffer(ctx *gin.Context) {
	offerID, err := uuid.Parse(ctx.Param("offer_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid offer ID",
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	offer, err := c.service.RejectOffer(ctx.Request.Context(), userID, offerID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Offer rejected",
		"data":    NewOfferResponse(offer, time.Now()),
	})
}

// Admin handlers

func (c *Controller) ListEntries(ctx *gin.Context) {
	var groupID uuid.UUID
	if groupIDStr := ctx.Query("group_id"); groupIDStr != "" {
		parsed, err := uuid.Parse(groupIDStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid group ID",
			})
			return
		}
		groupID = parsed
	}

	var date time.Time
	if dateStr := ctx.Query("date"); dateStr != "" {
		parsed, err := time.Parse(DateLayout, dateStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
			return
		}
		date = parsed
	}

	var status EntryStatus
	if statusStr := ctx.Query("status"); statusStr != "" {
		status = EntryStatus(statusStr)
		if !status.IsValid() {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status filter",
			})
			return
		}
	}

	entries, err := c.service.ListEntries(ctx.Request.Context(), groupID, date, status)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": entries,
	})
}

func (c *Controller) GetSettings(ctx *gin.Context) {
	settings, err := c.service.GetSettings(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": settings,
	})
}

func (c *Controller) UpdateSettings(ctx *gin.Context) {
	var request UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	current, err := c.service.GetSettings(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	request.ApplyTo(current)

	updated, err := c.service.UpdateSettings(ctx.Request.Context(), actorID, current)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Settings updated",
		"data":    updated,
	})
}

func (c *Controller) GetPenalty(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	penalty, err := c.service.GetPenalty(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": NewPenaltyResponse(penalty, time.Now()),
	})
}

func (c *Controller) UnblockUser(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.UnblockUser(ctx.Request.Context(), actorID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User unblocked",
	})
}

// AdvanceQueue is the manual admin trigger for re-offering a freed spot
func (c *Controller) AdvanceQueue(ctx *gin.Context) {
	var request AdvanceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := c.service.AdvanceQueueForSpot(ctx.Request.Context(), request.SpotID, request.ParsedDate())
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp := gin.H{"outcome": result.Outcome}
	if result.Offer != nil {
		resp["offer"] = NewOfferResponse(result.Offer, time.Now())
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// SweepExpired runs one expiry pass on demand, outside the scheduler
func (c *Controller) SweepExpired(ctx *gin.Context) {
	processed, err := c.service.ProcessExpiredOffers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Expiry sweep completed",
		"data": gin.H{
			"expired": processed,
		},
	})
}

func (c *Controller) HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "waitlist",
	})
}
