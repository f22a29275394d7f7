package reservations

import (
	"context"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/parking"
	"parkwise/internal/waitlist"
	"parkwise/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistAdvancer re-offers a spot freed by a cancellation. Injected by
// setter after construction because the waitlist service itself needs this
// module to create reservations.
type WaitlistAdvancer interface {
	AdvanceQueueForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*waitlist.AdvanceResult, error)
}

// SpotProvider is the slice of the parking module this service depends on
type SpotProvider interface {
	GetSpot(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error)
}

// Service interface defines the contract for reservation business logic
type Service interface {
	CreateReservation(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*Reservation, error)
	CreateFromOffer(tx *gorm.DB, userID, spotID uuid.UUID, date time.Time) (uuid.UUID, error)
	CreateFromIncident(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*Reservation, error)
	CancelReservation(ctx context.Context, userID, reservationID uuid.UUID) error
	CancelNoRedistribute(ctx context.Context, reservationID uuid.UUID) error
	GetReservation(ctx context.Context, userID, reservationID uuid.UUID) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID, from time.Time) ([]Reservation, error)
	GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*Reservation, error)
	GetConfirmedForSpotDate(ctx context.Context, spotID uuid.UUID, date time.Time) (*Reservation, error)

	SetWaitlistService(advancer WaitlistAdvancer)
}

type service struct {
	repo     Repository
	spots    SpotProvider
	advancer WaitlistAdvancer
	auditor  audit.Service
	log      *logger.Logger
}

// NewService creates a new reservation service
func NewService(repo Repository, spots SpotProvider, auditor audit.Service) Service {
	return &service{
		repo:    repo,
		spots:   spots,
		auditor: auditor,
		log:     logger.GetDefault(),
	}
}

// SetWaitlistService injects the waitlist advancer, breaking the construction
// cycle between the two modules
func (s *service) SetWaitlistService(advancer WaitlistAdvancer) {
	s.advancer = advancer
}

// CreateReservation books a free spot directly, outside the waitlist
func (s *service) CreateReservation(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*Reservation, error) {
	spot, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if !spot.Active {
		return nil, ErrSpotInactive
	}

	reservation := &Reservation{
		UserID:          userID,
		SpotID:          spotID,
		ReservationDate: date,
		Status:          StatusConfirmed,
		Source:          SourceManual,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.log.LogReservationCreated(ctx, reservation.ID.String(), spotID.String(), userID.String())
	s.auditor.Record(ctx, audit.Event(audit.ActionReservationCreated, userID, userID, reservation.ID, "reservation", audit.JSONMap{
		"spot_id":          spotID.String(),
		"reservation_date": reservation.ReservationDate.Format(waitlist.DateLayout),
		"source":           string(SourceManual),
	}))
	return reservation, nil
}

// CreateFromOffer inserts a waitlist-sourced reservation inside the accept
// transaction. Audit and logging happen at the waitlist layer after commit.
func (s *service) CreateFromOffer(tx *gorm.DB, userID, spotID uuid.UUID, date time.Time) (uuid.UUID, error) {
	reservation := &Reservation{
		UserID:          userID,
		SpotID:          spotID,
		ReservationDate: date,
		Status:          StatusConfirmed,
		Source:          SourceWaitlist,
	}
	if err := s.repo.CreateTx(tx, reservation); err != nil {
		return uuid.Nil, err
	}
	return reservation.ID, nil
}

// CreateFromIncident books an alternate spot for a user displaced by an
// occupied-spot incident
func (s *service) CreateFromIncident(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*Reservation, error) {
	reservation := &Reservation{
		UserID:          userID,
		SpotID:          spotID,
		ReservationDate: date,
		Status:          StatusConfirmed,
		Source:          SourceIncident,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.log.LogReservationCreated(ctx, reservation.ID.String(), spotID.String(), userID.String())
	s.auditor.Record(ctx, audit.Event(audit.ActionReservationCreated, userID, uuid.Nil, reservation.ID, "reservation", audit.JSONMap{
		"spot_id":          spotID.String(),
		"reservation_date": reservation.ReservationDate.Format(waitlist.DateLayout),
		"source":           string(SourceIncident),
	}))
	return reservation, nil
}

// CancelReservation cancels the user's own reservation and hands the freed
// spot to the waitlist
func (s *service) CancelReservation(ctx context.Context, userID, reservationID uuid.UUID) error {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != userID {
		return ErrNotReservationOwner
	}

	if err := s.cancel(ctx, reservation, userID); err != nil {
		return err
	}

	if s.advancer != nil {
		_, err := s.advancer.AdvanceQueueForSpot(ctx, reservation.SpotID, reservation.ReservationDate)
		if err != nil {
			s.log.ErrorWithContext(ctx, "failed to advance waitlist after cancellation", err, map[string]interface{}{
				"spot_id":          reservation.SpotID.String(),
				"reservation_date": reservation.ReservationDate.Format(waitlist.DateLayout),
			})
		}
	}
	return nil
}

// CancelNoRedistribute cancels a reservation without offering the spot to the
// waitlist. The incident flow uses it when the spot is physically occupied
// and must not be re-offered.
func (s *service) CancelNoRedistribute(ctx context.Context, reservationID uuid.UUID) error {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	return s.cancel(ctx, reservation, uuid.Nil)
}

func (s *service) cancel(ctx context.Context, reservation *Reservation, actorID uuid.UUID) error {
	now := time.Now()
	if err := s.repo.Cancel(ctx, reservation.ID, now); err != nil {
		return err
	}

	s.log.LogReservationCancelled(ctx, reservation.ID.String(), reservation.SpotID.String(), reservation.UserID.String())
	s.auditor.Record(ctx, audit.Event(audit.ActionReservationCancelled, reservation.UserID, actorID, reservation.ID, "reservation", audit.JSONMap{
		"spot_id":          reservation.SpotID.String(),
		"reservation_date": reservation.ReservationDate.Format(waitlist.DateLayout),
	}))
	return nil
}

func (s *service) GetReservation(ctx context.Context, userID, reservationID uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrNotReservationOwner
	}
	return reservation, nil
}

func (s *service) GetUserReservations(ctx context.Context, userID uuid.UUID, from time.Time) ([]Reservation, error) {
	return s.repo.ListUserReservations(ctx, userID, from)
}

func (s *service) GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*Reservation, error) {
	return s.repo.GetConfirmedForUserDate(ctx, userID, date)
}

func (s *service) GetConfirmedForSpotDate(ctx context.Context, spotID uuid.UUID, date time.Time) (*Reservation, error) {
	return s.repo.GetConfirmedForSpotDate(ctx, spotID, date)
}
