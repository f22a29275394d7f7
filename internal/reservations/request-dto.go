package reservations

import (
	"time"

	"parkwise/internal/waitlist"

	"github.com/google/uuid"
)

// CreateReservationRequest books a specific free spot directly
type CreateReservationRequest struct {
	SpotID uuid.UUID `json:"spot_id" binding:"required"`
	Date   string    `json:"date" binding:"required,reservationdate"`
}

// ParsedDate returns the request date as a normalized time. Call only after
// binding succeeded.
func (r *CreateReservationRequest) ParsedDate() time.Time {
	t, _ := time.Parse(waitlist.DateLayout, r.Date)
	return waitlist.NormalizeDate(t)
}
