package incidents

import (
	"time"

	"parkwise/internal/waitlist"
)

// ReportIncidentRequest reports the caller's reserved spot as occupied
type ReportIncidentRequest struct {
	Date         string `json:"date" binding:"required,reservationdate"`
	LicensePlate string `json:"license_plate" binding:"required,min=2,max=20"`
	PhotoURL     string `json:"photo_url" binding:"omitempty,url,max=500"`
}

// ParsedDate returns the request date as a normalized time. Call only after
// binding succeeded.
func (r *ReportIncidentRequest) ParsedDate() time.Time {
	t, _ := time.Parse(waitlist.DateLayout, r.Date)
	return waitlist.NormalizeDate(t)
}
