package reservations

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ReservationSource records how the reservation came to exist
type ReservationSource string

const (
	SourceManual   ReservationSource = "MANUAL"
	SourceWaitlist ReservationSource = "WAITLIST"
	SourceIncident ReservationSource = "INCIDENT"
)

// Reservation binds one user to one spot for one calendar date. At most one
// CONFIRMED reservation may exist per (spot, date); the partial unique index
// in the constraints migration enforces it.
type Reservation struct {
	ID              uuid.UUID         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID          uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	SpotID          uuid.UUID         `json:"spot_id" gorm:"type:uuid;not null;index:idx_reservations_spot_date"`
	ReservationDate time.Time         `json:"reservation_date" gorm:"type:date;not null;index:idx_reservations_spot_date"`
	Status          ReservationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Source          ReservationSource `json:"source" gorm:"type:varchar(20);not null"`
	CreatedAt       time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
}

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSpotUnavailable     = errors.New("spot already reserved for this date")
	ErrNotReservationOwner = errors.New("reservation belongs to another user")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrSpotInactive        = errors.New("spot is not active")
)
