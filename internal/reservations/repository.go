package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkwise/internal/waitlist"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for reservation data operations
type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	CreateTx(tx *gorm.DB, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetConfirmedForSpotDate(ctx context.Context, spotID uuid.UUID, date time.Time) (*Reservation, error)
	GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*Reservation, error)
	ListUserReservations(ctx context.Context, userID uuid.UUID, from time.Time) ([]Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservation repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.CreateTx(r.db.WithContext(ctx), reservation)
}

// CreateTx inserts a reservation inside the caller's transaction; the
// waitlist accept path uses it so the reservation commits or rolls back with
// the offer transition
func (r *repository) CreateTx(tx *gorm.DB, reservation *Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	reservation.ReservationDate = waitlist.NormalizeDate(reservation.ReservationDate)

	err := tx.Create(reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSpotUnavailable
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *repository) GetConfirmedForSpotDate(ctx context.Context, spotID uuid.UUID, date time.Time) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("spot_id = ? AND reservation_date = ? AND status = ?",
			spotID, waitlist.NormalizeDate(date), StatusConfirmed).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get confirmed reservation: %w", err)
	}
	return &reservation, nil
}

func (r *repository) GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reservation_date = ? AND status = ?",
			userID, waitlist.NormalizeDate(date), StatusConfirmed).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user reservation: %w", err)
	}
	return &reservation, nil
}

func (r *repository) ListUserReservations(ctx context.Context, userID uuid.UUID, from time.Time) ([]Reservation, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("reservation_date >= ?", waitlist.NormalizeDate(from))
	}

	var reservations []Reservation
	err := query.Order("reservation_date ASC").Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// Cancel performs a guarded CONFIRMED to CANCELLED transition;
// ErrAlreadyCancelled signals the reservation was not confirmed anymore
func (r *repository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status = ?", id, StatusConfirmed).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyCancelled
	}
	return nil
}
