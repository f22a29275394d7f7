package waitlist

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("reservationdate", validReservationDate)
	}
}

// validReservationDate accepts calendar dates in the YYYY-MM-DD wire format
var validReservationDate validator.Func = func(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// RegisterRequest joins the caller to the queues of one or more groups for a
// single date
type RegisterRequest struct {
	GroupIDs []uuid.UUID `json:"group_ids" binding:"required,min=1,max=10,dive,required"`
	Date     string      `json:"date" binding:"required,reservationdate"`
}

// ParsedDate returns the request date as a normalized time. Call only after
// binding succeeded.
func (r *RegisterRequest) ParsedDate() time.Time {
	t, _ := time.Parse(DateLayout, r.Date)
	return NormalizeDate(t)
}

// AdvanceRequest is the admin trigger for advancing one spot's queue
type AdvanceRequest struct {
	SpotID uuid.UUID `json:"spot_id" binding:"required"`
	Date   string    `json:"date" binding:"required,reservationdate"`
}

func (r *AdvanceRequest) ParsedDate() time.Time {
	t, _ := time.Parse(DateLayout, r.Date)
	return NormalizeDate(t)
}

// UpdateSettingsRequest partially updates the waitlist settings; absent
// fields keep their current value
type UpdateSettingsRequest struct {
	WaitlistEnabled       *bool `json:"waitlist_enabled"`
	AcceptanceTimeMinutes *int  `json:"acceptance_time_minutes" binding:"omitempty,min=30,max=1440"`
	MaxSimultaneous       *int  `json:"max_simultaneous" binding:"omitempty,min=1,max=10"`
	PriorityByRole        *bool `json:"priority_by_role"`
	PenaltyEnabled        *bool `json:"penalty_enabled"`
	PenaltyThreshold      *int  `json:"penalty_threshold" binding:"omitempty,min=2,max=10"`
	PenaltyDurationDays   *int  `json:"penalty_duration_days" binding:"omitempty,min=1,max=30"`
}

// ApplyTo merges the set fields over the current settings
func (r *UpdateSettingsRequest) ApplyTo(settings *WaitlistSettings) {
	if r.WaitlistEnabled != nil {
		settings.WaitlistEnabled = *r.WaitlistEnabled
	}
	if r.AcceptanceTimeMinutes != nil {
		settings.AcceptanceTimeMinutes = *r.AcceptanceTimeMinutes
	}
	if r.MaxSimultaneous != nil {
		settings.MaxSimultaneous = *r.MaxSimultaneous
	}
	if r.PriorityByRole != nil {
		settings.PriorityByRole = *r.PriorityByRole
	}
	if r.PenaltyEnabled != nil {
		settings.PenaltyEnabled = *r.PenaltyEnabled
	}
	if r.PenaltyThreshold != nil {
		settings.PenaltyThreshold = *r.PenaltyThreshold
	}
	if r.PenaltyDurationDays != nil {
		settings.PenaltyDurationDays = *r.PenaltyDurationDays
	}
}
