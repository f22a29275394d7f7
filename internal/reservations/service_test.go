package reservations

import (
	"context"
	"testing"
	"time"

	"parkwise/internal/parking"
	"parkwise/internal/waitlist"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testDate() time.Time {
	return time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	spotID := uuid.New()
	date := testDate()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		spots := new(MockSpotProvider)
		auditor := &fakeAuditor{}
		svc := NewService(repo, spots, auditor)

		spots.On("GetSpot", ctx, spotID).Return(&parking.ParkingSpot{ID: spotID, Active: true}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(r *Reservation) bool {
			return r.UserID == userID && r.SpotID == spotID && r.Status == StatusConfirmed && r.Source == SourceManual
		})).Return(nil)

		reservation, err := svc.CreateReservation(ctx, userID, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, StatusConfirmed, reservation.Status)
		assert.Equal(t, SourceManual, reservation.Source)
		assert.Contains(t, auditor.actions, "reservation.created")
	})

	t.Run("Inactive Spot", func(t *testing.T) {
		repo := new(MockRepository)
		spots := new(MockSpotProvider)
		svc := NewService(repo, spots, &fakeAuditor{})

		spots.On("GetSpot", ctx, spotID).Return(&parking.ParkingSpot{ID: spotID, Active: false}, nil)

		reservation, err := svc.CreateReservation(ctx, userID, spotID, date)
		assert.ErrorIs(t, err, ErrSpotInactive)
		assert.Nil(t, reservation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Spot Taken", func(t *testing.T) {
		repo := new(MockRepository)
		spots := new(MockSpotProvider)
		svc := NewService(repo, spots, &fakeAuditor{})

		spots.On("GetSpot", ctx, spotID).Return(&parking.ParkingSpot{ID: spotID, Active: true}, nil)
		repo.On("Create", ctx, mock.Anything).Return(ErrSpotUnavailable)

		_, err := svc.CreateReservation(ctx, userID, spotID, date)
		assert.ErrorIs(t, err, ErrSpotUnavailable)
	})
}

func TestCreateFromIncident(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	spotID := uuid.New()

	repo := new(MockRepository)
	auditor := &fakeAuditor{}
	svc := NewService(repo, new(MockSpotProvider), auditor)

	// Incident reassignment does not require the spot to pass the active
	// check again; the incident service picked it from free active spots
	repo.On("Create", ctx, mock.MatchedBy(func(r *Reservation) bool {
		return r.Source == SourceIncident && r.Status == StatusConfirmed
	})).Return(nil)

	reservation, err := svc.CreateFromIncident(ctx, userID, spotID, testDate())
	assert.NoError(t, err)
	assert.Equal(t, SourceIncident, reservation.Source)
	assert.Contains(t, auditor.actions, "reservation.created")
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	reservationID := uuid.New()
	spotID := uuid.New()
	date := testDate()

	reservation := &Reservation{
		ID:              reservationID,
		UserID:          userID,
		SpotID:          spotID,
		ReservationDate: date,
		Status:          StatusConfirmed,
		Source:          SourceManual,
	}

	t.Run("Success Hands Spot To Waitlist", func(t *testing.T) {
		repo := new(MockRepository)
		advancer := new(MockAdvancer)
		auditor := &fakeAuditor{}
		svc := NewService(repo, new(MockSpotProvider), auditor)
		svc.SetWaitlistService(advancer)

		repo.On("GetByID", ctx, reservationID).Return(reservation, nil)
		repo.On("Cancel", ctx, reservationID, mock.Anything).Return(nil)
		advancer.On("AdvanceQueueForSpot", ctx, spotID, date).Return(&waitlist.AdvanceResult{Outcome: waitlist.AdvanceOfferCreated}, nil)

		assert.NoError(t, svc.CancelReservation(ctx, userID, reservationID))
		advancer.AssertCalled(t, "AdvanceQueueForSpot", ctx, spotID, date)
		assert.Contains(t, auditor.actions, "reservation.cancelled")
	})

	t.Run("Advance Failure Does Not Fail The Cancellation", func(t *testing.T) {
		repo := new(MockRepository)
		advancer := new(MockAdvancer)
		svc := NewService(repo, new(MockSpotProvider), &fakeAuditor{})
		svc.SetWaitlistService(advancer)

		repo.On("GetByID", ctx, reservationID).Return(reservation, nil)
		repo.On("Cancel", ctx, reservationID, mock.Anything).Return(nil)
		advancer.On("AdvanceQueueForSpot", ctx, spotID, date).Return(nil, assert.AnError)

		assert.NoError(t, svc.CancelReservation(ctx, userID, reservationID))
	})

	t.Run("Not Owner", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSpotProvider), &fakeAuditor{})

		repo.On("GetByID", ctx, reservationID).Return(reservation, nil)

		err := svc.CancelReservation(ctx, uuid.New(), reservationID)
		assert.ErrorIs(t, err, ErrNotReservationOwner)
		repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSpotProvider), &fakeAuditor{})

		repo.On("GetByID", ctx, reservationID).Return(reservation, nil)
		repo.On("Cancel", ctx, reservationID, mock.Anything).Return(ErrAlreadyCancelled)

		err := svc.CancelReservation(ctx, userID, reservationID)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})
}

func TestCancelNoRedistribute(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()
	reservation := &Reservation{
		ID:              reservationID,
		UserID:          uuid.New(),
		SpotID:          uuid.New(),
		ReservationDate: testDate(),
		Status:          StatusConfirmed,
	}

	repo := new(MockRepository)
	advancer := new(MockAdvancer)
	svc := NewService(repo, new(MockSpotProvider), &fakeAuditor{})
	svc.SetWaitlistService(advancer)

	repo.On("GetByID", ctx, reservationID).Return(reservation, nil)
	repo.On("Cancel", ctx, reservationID, mock.Anything).Return(nil)

	assert.NoError(t, svc.CancelNoRedistribute(ctx, reservationID))

	// The occupied spot must not be re-offered
	advancer.AssertNotCalled(t, "AdvanceQueueForSpot", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetReservation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	reservationID := uuid.New()
	reservation := &Reservation{ID: reservationID, UserID: userID, Status: StatusConfirmed}

	repo := new(MockRepository)
	svc := NewService(repo, new(MockSpotProvider), &fakeAuditor{})
	repo.On("GetByID", ctx, reservationID).Return(reservation, nil)

	got, err := svc.GetReservation(ctx, userID, reservationID)
	assert.NoError(t, err)
	assert.Equal(t, reservationID, got.ID)

	_, err = svc.GetReservation(ctx, uuid.New(), reservationID)
	assert.ErrorIs(t, err, ErrNotReservationOwner)
}
