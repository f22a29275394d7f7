package incidents

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// IncidentStatus represents the lifecycle of an occupied-spot report
type IncidentStatus string

const (
	// StatusReported is the initial state while reassignment runs
	StatusReported IncidentStatus = "REPORTED"
	// StatusReassigned means the reporter received an alternate spot
	StatusReassigned IncidentStatus = "REASSIGNED"
	// StatusNoSpot means no alternate spot was free for the date
	StatusNoSpot IncidentStatus = "NO_SPOT_AVAILABLE"
	// StatusConfirmed means an admin confirmed the violation
	StatusConfirmed IncidentStatus = "CONFIRMED"
	// StatusDismissed means an admin closed the report without action
	StatusDismissed IncidentStatus = "DISMISSED"
)

// IsTerminal reports whether an admin has closed the incident
func (is IncidentStatus) IsTerminal() bool {
	return is == StatusConfirmed || is == StatusDismissed
}

// Incident records a reserved spot found physically occupied by another
// vehicle, and what was done about it
type Incident struct {
	ID               uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ReporterID       uuid.UUID      `json:"reporter_id" gorm:"type:uuid;not null;index"`
	SpotID           uuid.UUID      `json:"spot_id" gorm:"type:uuid;not null;index"`
	ReservationDate  time.Time      `json:"reservation_date" gorm:"type:date;not null"`
	LicensePlate     string         `json:"license_plate" gorm:"type:varchar(20);not null"`
	PhotoURL         string         `json:"photo_url,omitempty" gorm:"type:varchar(500)"`
	Status           IncidentStatus `json:"status" gorm:"type:varchar(30);not null;index"`
	OffenderID       *uuid.UUID     `json:"offender_id,omitempty" gorm:"type:uuid"`
	NewSpotID        *uuid.UUID     `json:"new_spot_id,omitempty" gorm:"type:uuid"`
	NewReservationID *uuid.UUID     `json:"new_reservation_id,omitempty" gorm:"type:uuid"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
}

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrIncidentClosed   = errors.New("incident already closed")
	ErrNoReservation    = errors.New("no confirmed reservation for this date")
	ErrWrongSpot        = errors.New("reservation is for a different spot")
)
