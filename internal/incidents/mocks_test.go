package incidents

import (
	"context"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/notifications"
	"parkwise/internal/parking"
	"parkwise/internal/reservations"
	"parkwise/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, incident *Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}
func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Incident), args.Error(1)
}
func (m *MockRepository) Update(ctx context.Context, incident *Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}
func (m *MockRepository) List(ctx context.Context, status IncidentStatus, since time.Time) ([]Incident, error) {
	args := m.Called(ctx, status, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Incident), args.Error(1)
}
func (m *MockRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]Incident, error) {
	args := m.Called(ctx, reporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Incident), args.Error(1)
}

// MockReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*reservations.Reservation, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservations.Reservation), args.Error(1)
}
func (m *MockReservationService) CreateFromIncident(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*reservations.Reservation, error) {
	args := m.Called(ctx, userID, spotID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservations.Reservation), args.Error(1)
}
func (m *MockReservationService) CancelNoRedistribute(ctx context.Context, reservationID uuid.UUID) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}
func (m *MockReservationService) CancelReservation(ctx context.Context, userID, reservationID uuid.UUID) error {
	args := m.Called(ctx, userID, reservationID)
	return args.Error(0)
}

// MockSpotFinder
type MockSpotFinder struct {
	mock.Mock
}

func (m *MockSpotFinder) GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, spotID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
func (m *MockSpotFinder) FindAlternateSpot(ctx context.Context, preferredGroupID uuid.UUID, date time.Time, excludeSpotID uuid.UUID) (*parking.ParkingSpot, error) {
	args := m.Called(ctx, preferredGroupID, date, excludeSpotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parking.ParkingSpot), args.Error(1)
}

// MockUserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByLicensePlate(ctx context.Context, plate string) (*users.User, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

// fakeNotifier records notification types per call
type fakeNotifier struct {
	sent []notifications.NotificationType
}

func (f *fakeNotifier) Notify(ctx context.Context, t notifications.NotificationType, userID uuid.UUID, data map[string]interface{}) {
	f.sent = append(f.sent, t)
}

// fakeAuditor records audit actions without a database
type fakeAuditor struct {
	actions []string
}

func (f *fakeAuditor) Record(ctx context.Context, entry *audit.AuditLog) {
	f.actions = append(f.actions, entry.Action)
}

func (f *fakeAuditor) List(ctx context.Context, filter audit.ListFilter) ([]audit.AuditLog, error) {
	return nil, nil
}
