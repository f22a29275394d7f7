package waitlist

import (
	"context"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/notifications"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetSettings(ctx context.Context) (*WaitlistSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistSettings), args.Error(1)
}
func (m *MockRepository) UpdateSettings(ctx context.Context, settings *WaitlistSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
func (m *MockRepository) CreateEntry(ctx context.Context, entry *WaitlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistEntry), args.Error(1)
}
func (m *MockRepository) GetLiveEntry(ctx context.Context, userID, groupID uuid.UUID, date time.Time) (*WaitlistEntry, error) {
	args := m.Called(ctx, userID, groupID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistEntry), args.Error(1)
}
func (m *MockRepository) ListActiveEntries(ctx context.Context, groupID uuid.UUID, date time.Time, excludeBlockedAt time.Time) ([]WaitlistEntry, error) {
	args := m.Called(ctx, groupID, date, excludeBlockedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitlistEntry), args.Error(1)
}
func (m *MockRepository) ListEntries(ctx context.Context, groupID uuid.UUID, date time.Time, status EntryStatus) ([]WaitlistEntry, error) {
	args := m.Called(ctx, groupID, date, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitlistEntry), args.Error(1)
}
func (m *MockRepository) ListUserEntries(ctx context.Context, userID uuid.UUID, liveOnly bool) ([]WaitlistEntry, error) {
	args := m.Called(ctx, userID, liveOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitlistEntry), args.Error(1)
}
func (m *MockRepository) CountLiveEntriesForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) CountActiveForGroupDate(ctx context.Context, groupID uuid.UUID, date time.Time) (int, error) {
	args := m.Called(ctx, groupID, date)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) UpdateEntryStatus(ctx context.Context, id uuid.UUID, from, to EntryStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockRepository) GetOfferByID(ctx context.Context, id uuid.UUID) (*WaitlistOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistOffer), args.Error(1)
}
func (m *MockRepository) GetPendingOfferForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*WaitlistOffer, error) {
	args := m.Called(ctx, spotID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistOffer), args.Error(1)
}
func (m *MockRepository) ListPendingOfferUserIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
func (m *MockRepository) ListNonResponderUserIDs(ctx context.Context, spotID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, spotID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
func (m *MockRepository) ListExpiredPendingOffers(ctx context.Context, now time.Time, limit int) ([]WaitlistOffer, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitlistOffer), args.Error(1)
}
func (m *MockRepository) ListUserOffers(ctx context.Context, userID uuid.UUID, pendingOnly bool) ([]WaitlistOffer, error) {
	args := m.Called(ctx, userID, pendingOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitlistOffer), args.Error(1)
}
func (m *MockRepository) CreateOfferAtomic(ctx context.Context, entryID, userID, spotID uuid.UUID, date, expiresAt time.Time) (*WaitlistOffer, error) {
	args := m.Called(ctx, entryID, userID, spotID, date, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistOffer), args.Error(1)
}
func (m *MockRepository) AcceptOfferAtomic(ctx context.Context, offerID, userID uuid.UUID, now time.Time, createReservation func(tx *gorm.DB, offer *WaitlistOffer) (uuid.UUID, error)) (*AcceptOutcome, error) {
	args := m.Called(ctx, offerID, userID, now, createReservation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AcceptOutcome), args.Error(1)
}
func (m *MockRepository) ResolveNonResponse(ctx context.Context, offerID uuid.UUID, actorID *uuid.UUID, params NonResponseParams) (*NonResponseOutcome, error) {
	args := m.Called(ctx, offerID, actorID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NonResponseOutcome), args.Error(1)
}
func (m *MockRepository) GetPenalty(ctx context.Context, userID uuid.UUID) (*WaitlistPenalty, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitlistPenalty), args.Error(1)
}
func (m *MockRepository) ClearPenalty(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockRepository) AcquireAdvanceLock(ctx context.Context, spotID uuid.UUID, date time.Time) (bool, func(), error) {
	args := m.Called(ctx, spotID, date)
	return args.Bool(0), func() {}, args.Error(2)
}

// MockSpotService
type MockSpotService struct {
	mock.Mock
}

func (m *MockSpotService) GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, spotID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockUserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) RolePriorities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

// MockReservationCreator
type MockReservationCreator struct {
	mock.Mock
}

func (m *MockReservationCreator) CreateFromOffer(tx *gorm.DB, userID, spotID uuid.UUID, date time.Time) (uuid.UUID, error) {
	args := m.Called(tx, userID, spotID, date)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// fakeNotifier records the notification types emitted per user
type fakeNotifier struct {
	sent []notifications.NotificationType
}

func (f *fakeNotifier) Notify(ctx context.Context, t notifications.NotificationType, userID uuid.UUID, data map[string]interface{}) {
	f.sent = append(f.sent, t)
}

func (f *fakeNotifier) count(t notifications.NotificationType) int {
	n := 0
	for _, s := range f.sent {
		if s == t {
			n++
		}
	}
	return n
}

// fakeAuditor records the actions written to the audit trail
type fakeAuditor struct {
	recorded []*audit.AuditLog
}

func (f *fakeAuditor) Record(ctx context.Context, entry *audit.AuditLog) {
	f.recorded = append(f.recorded, entry)
}

func (f *fakeAuditor) List(ctx context.Context, filter audit.ListFilter) ([]audit.AuditLog, error) {
	return nil, nil
}

func (f *fakeAuditor) actions() []string {
	out := make([]string, 0, len(f.recorded))
	for _, e := range f.recorded {
		out = append(out, e.Action)
	}
	return out
}
