package reservations

import (
	"context"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/parking"
	"parkwise/internal/waitlist"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, reservation *Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}
func (m *MockRepository) CreateTx(tx *gorm.DB, reservation *Reservation) error {
	args := m.Called(tx, reservation)
	return args.Error(0)
}
func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}
func (m *MockRepository) GetConfirmedForSpotDate(ctx context.Context, spotID uuid.UUID, date time.Time) (*Reservation, error) {
	args := m.Called(ctx, spotID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}
func (m *MockRepository) GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*Reservation, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}
func (m *MockRepository) ListUserReservations(ctx context.Context, userID uuid.UUID, from time.Time) ([]Reservation, error) {
	args := m.Called(ctx, userID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reservation), args.Error(1)
}
func (m *MockRepository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

// MockSpotProvider
type MockSpotProvider struct {
	mock.Mock
}

func (m *MockSpotProvider) GetSpot(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parking.ParkingSpot), args.Error(1)
}

// MockAdvancer
type MockAdvancer struct {
	mock.Mock
}

func (m *MockAdvancer) AdvanceQueueForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*waitlist.AdvanceResult, error) {
	args := m.Called(ctx, spotID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.AdvanceResult), args.Error(1)
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
