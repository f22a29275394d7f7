package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkwise/internal/notifications"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type serviceFixture struct {
	repo     *MockRepository
	spots    *MockSpotService
	users    *MockUserDirectory
	resv     *MockReservationCreator
	notifier *fakeNotifier
	auditor  *fakeAuditor
	svc      Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     new(MockRepository),
		spots:    new(MockSpotService),
		users:    new(MockUserDirectory),
		resv:     new(MockReservationCreator),
		notifier: &fakeNotifier{},
		auditor:  &fakeAuditor{},
	}
	f.svc = NewService(f.repo, f.spots, f.users, f.resv, f.notifier, f.auditor)
	return f
}

func testDate() time.Time {
	return time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	groupA := uuid.New()
	groupB := uuid.New()
	date := testDate()

	t.Run("Success With One Skipped Group", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("GetPenalty", ctx, userID).Return(nil, nil)
		f.repo.On("CountLiveEntriesForUser", ctx, userID).Return(1, nil)
		f.repo.On("CountActiveForGroupDate", ctx, groupA, date).Return(4, nil)
		f.repo.On("CountActiveForGroupDate", ctx, groupB, date).Return(0, nil)
		f.repo.On("CreateEntry", ctx, mock.MatchedBy(func(e *WaitlistEntry) bool {
			return e.GroupID == groupA
		})).Return(nil)
		f.repo.On("CreateEntry", ctx, mock.MatchedBy(func(e *WaitlistEntry) bool {
			return e.GroupID == groupB
		})).Return(ErrAlreadyQueued)

		// Duplicate group IDs in the request collapse to one registration
		result, err := f.svc.Register(ctx, userID, []uuid.UUID{groupA, groupB, groupA}, date)
		assert.NoError(t, err)
		assert.Len(t, result.Registered, 1)
		assert.Equal(t, groupA, result.Registered[0].GroupID)
		assert.Equal(t, EntryStatusActive, result.Registered[0].Status)
		assert.Equal(t, 5, result.Registered[0].Position)
		assert.Len(t, result.Skipped, 1)
		assert.Equal(t, groupB, result.Skipped[0].GroupID)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeWaitlistRegistered))
		f.repo.AssertNumberOfCalls(t, "CreateEntry", 2)
	})

	t.Run("Waitlist Disabled", func(t *testing.T) {
		f := newServiceFixture()
		disabled := DefaultSettings()
		disabled.WaitlistEnabled = false
		f.repo.On("GetSettings", ctx).Return(disabled, nil)

		result, err := f.svc.Register(ctx, userID, []uuid.UUID{groupA}, date)
		assert.ErrorIs(t, err, ErrWaitlistDisabled)
		assert.Nil(t, result)
	})

	t.Run("Blocked User", func(t *testing.T) {
		f := newServiceFixture()
		until := time.Now().Add(48 * time.Hour)
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("GetPenalty", ctx, userID).Return(&WaitlistPenalty{
			UserID:       userID,
			IsBlocked:    true,
			BlockedUntil: &until,
		}, nil)

		result, err := f.svc.Register(ctx, userID, []uuid.UUID{groupA}, date)
		assert.ErrorIs(t, err, ErrUserBlocked)
		var blocked *BlockedError
		assert.ErrorAs(t, err, &blocked)
		assert.Equal(t, until, blocked.BlockedUntil)
		assert.Nil(t, result)
		f.repo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
	})

	t.Run("Simultaneous Limit Exceeded", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("GetPenalty", ctx, userID).Return(nil, nil)
		f.repo.On("CountLiveEntriesForUser", ctx, userID).Return(2, nil)

		result, err := f.svc.Register(ctx, userID, []uuid.UUID{groupA, groupB}, date)
		assert.ErrorIs(t, err, ErrLimitExceeded)
		var limit *LimitError
		assert.ErrorAs(t, err, &limit)
		assert.Equal(t, 3, limit.Limit)
		assert.Equal(t, 2, limit.Current)
		assert.Equal(t, 2, limit.Requested)
		assert.Equal(t, 1, limit.Remaining())
		assert.Nil(t, result)
	})

	t.Run("Lapsed Block Does Not Prevent Registration", func(t *testing.T) {
		f := newServiceFixture()
		past := time.Now().Add(-time.Hour)
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("GetPenalty", ctx, userID).Return(&WaitlistPenalty{
			UserID:       userID,
			IsBlocked:    true,
			BlockedUntil: &past,
		}, nil)
		f.repo.On("CountLiveEntriesForUser", ctx, userID).Return(0, nil)
		f.repo.On("CountActiveForGroupDate", ctx, groupA, date).Return(0, nil)
		f.repo.On("CreateEntry", ctx, mock.Anything).Return(nil)

		result, err := f.svc.Register(ctx, userID, []uuid.UUID{groupA}, date)
		assert.NoError(t, err)
		assert.Len(t, result.Registered, 1)
	})
}

func TestCancelEntry(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	entryID := uuid.New()
	entry := &WaitlistEntry{
		ID:              entryID,
		UserID:          userID,
		GroupID:         uuid.New(),
		ReservationDate: testDate(),
		Status:          EntryStatusActive,
	}

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetEntryByID", ctx, entryID).Return(entry, nil)
		f.repo.On("UpdateEntryStatus", ctx, entryID, EntryStatusActive, EntryStatusCancelled).Return(nil)

		assert.NoError(t, f.svc.CancelEntry(ctx, userID, entryID))
		assert.Contains(t, f.auditor.actions(), "waitlist.entry_cancelled")
	})

	t.Run("Not Owner", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetEntryByID", ctx, entryID).Return(entry, nil)

		err := f.svc.CancelEntry(ctx, uuid.New(), entryID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
		f.repo.AssertNotCalled(t, "UpdateEntryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Entry Holds Pending Offer", func(t *testing.T) {
		f := newServiceFixture()
		pending := *entry
		pending.Status = EntryStatusOfferPending
		f.repo.On("GetEntryByID", ctx, entryID).Return(&pending, nil)

		err := f.svc.CancelEntry(ctx, userID, entryID)
		assert.ErrorIs(t, err, ErrEntryNotCancellable)
	})

	t.Run("Raced An Advance", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetEntryByID", ctx, entryID).Return(entry, nil)
		f.repo.On("UpdateEntryStatus", ctx, entryID, EntryStatusActive, EntryStatusCancelled).Return(ErrStorageConflict)

		err := f.svc.CancelEntry(ctx, userID, entryID)
		assert.ErrorIs(t, err, ErrEntryNotCancellable)
	})
}

func TestAdvanceQueueForSpot(t *testing.T) {
	ctx := context.Background()
	spotID := uuid.New()
	groupID := uuid.New()
	date := testDate()

	t.Run("Creates Offer For Head Of Queue", func(t *testing.T) {
		f := newServiceFixture()
		base := time.Now().Add(-time.Hour)
		holdsOffer := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base}
		winner := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base.Add(time.Minute)}

		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(nil, nil)
		f.repo.On("ListActiveEntries", ctx, groupID, date, mock.Anything).Return([]WaitlistEntry{holdsOffer, winner}, nil)
		f.repo.On("ListPendingOfferUserIDs", ctx, date).Return([]uuid.UUID{holdsOffer.UserID}, nil)
		f.repo.On("ListNonResponderUserIDs", ctx, spotID, date).Return([]uuid.UUID{}, nil)

		created := &WaitlistOffer{ID: uuid.New(), EntryID: winner.ID, UserID: winner.UserID, SpotID: spotID, ReservationDate: date, Status: OfferStatusPending}
		f.repo.On("CreateOfferAtomic", ctx, winner.ID, winner.UserID, spotID, date, mock.Anything).Return(created, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceOfferCreated, result.Outcome)
		assert.Equal(t, created.ID, result.Offer.ID)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeOfferCreated))
		assert.Contains(t, f.auditor.actions(), "waitlist.offer_created")
		f.users.AssertNotCalled(t, "RolePriorities", mock.Anything, mock.Anything)
	})

	t.Run("Skips Users Who Already Let This Spot Lapse", func(t *testing.T) {
		f := newServiceFixture()
		base := time.Now().Add(-time.Hour)
		lapsed := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base}
		next := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base.Add(time.Minute)}

		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(nil, nil)
		f.repo.On("ListActiveEntries", ctx, groupID, date, mock.Anything).Return([]WaitlistEntry{lapsed, next}, nil)
		f.repo.On("ListPendingOfferUserIDs", ctx, date).Return([]uuid.UUID{}, nil)
		f.repo.On("ListNonResponderUserIDs", ctx, spotID, date).Return([]uuid.UUID{lapsed.UserID}, nil)

		created := &WaitlistOffer{ID: uuid.New(), EntryID: next.ID, UserID: next.UserID, SpotID: spotID, ReservationDate: date, Status: OfferStatusPending}
		f.repo.On("CreateOfferAtomic", ctx, next.ID, next.UserID, spotID, date, mock.Anything).Return(created, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceOfferCreated, result.Outcome)
		assert.Equal(t, next.UserID, result.Offer.UserID)
		f.repo.AssertNotCalled(t, "CreateOfferAtomic", ctx, lapsed.ID, lapsed.UserID, spotID, date, mock.Anything)
	})

	t.Run("Role Priority Reorders Queue", func(t *testing.T) {
		f := newServiceFixture()
		base := time.Now().Add(-time.Hour)
		employee := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base}
		manager := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: base.Add(time.Minute)}

		settings := DefaultSettings()
		settings.PriorityByRole = true
		f.repo.On("GetSettings", ctx).Return(settings, nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(nil, nil)
		f.repo.On("ListActiveEntries", ctx, groupID, date, mock.Anything).Return([]WaitlistEntry{employee, manager}, nil)
		f.users.On("RolePriorities", ctx, mock.Anything).Return(map[uuid.UUID]int{
			employee.UserID: 3,
			manager.UserID:  2,
		}, nil)
		f.repo.On("ListPendingOfferUserIDs", ctx, date).Return([]uuid.UUID{}, nil)
		f.repo.On("ListNonResponderUserIDs", ctx, spotID, date).Return([]uuid.UUID{}, nil)

		created := &WaitlistOffer{ID: uuid.New(), EntryID: manager.ID, UserID: manager.UserID, SpotID: spotID, ReservationDate: date, Status: OfferStatusPending}
		f.repo.On("CreateOfferAtomic", ctx, manager.ID, manager.UserID, spotID, date, mock.Anything).Return(created, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceOfferCreated, result.Outcome)
		assert.Equal(t, manager.UserID, result.Offer.UserID)
	})

	t.Run("Waitlist Disabled", func(t *testing.T) {
		f := newServiceFixture()
		disabled := DefaultSettings()
		disabled.WaitlistEnabled = false
		f.repo.On("GetSettings", ctx).Return(disabled, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceSkippedDisabled, result.Outcome)
		f.repo.AssertNotCalled(t, "AcquireAdvanceLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lock Held Elsewhere", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(false, nil, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceSkippedLocked, result.Outcome)
	})

	t.Run("Existing Pending Offer", func(t *testing.T) {
		f := newServiceFixture()
		pending := &WaitlistOffer{ID: uuid.New(), SpotID: spotID, ReservationDate: date, Status: OfferStatusPending}
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(pending, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceOfferPending, result.Outcome)
		assert.Equal(t, pending.ID, result.Offer.ID)
		f.repo.AssertNotCalled(t, "CreateOfferAtomic", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty Queue", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(nil, nil)
		f.repo.On("ListActiveEntries", ctx, groupID, date, mock.Anything).Return([]WaitlistEntry{}, nil)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceNoEligibleUser, result.Outcome)
	})

	t.Run("Aborts After Repeated Conflicts", func(t *testing.T) {
		f := newServiceFixture()
		entry := WaitlistEntry{ID: uuid.New(), UserID: uuid.New(), GroupID: groupID, ReservationDate: date, Status: EntryStatusActive, CreatedAt: time.Now()}

		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(groupID, nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, spotID, date).Return(nil, nil)
		f.repo.On("ListActiveEntries", ctx, groupID, date, mock.Anything).Return([]WaitlistEntry{entry}, nil)
		f.repo.On("ListPendingOfferUserIDs", ctx, date).Return([]uuid.UUID{}, nil)
		f.repo.On("ListNonResponderUserIDs", ctx, spotID, date).Return([]uuid.UUID{}, nil)
		f.repo.On("CreateOfferAtomic", ctx, entry.ID, entry.UserID, spotID, date, mock.Anything).Return(nil, ErrStorageConflict)

		result, err := f.svc.AdvanceQueueForSpot(ctx, spotID, date)
		assert.NoError(t, err)
		assert.Equal(t, AdvanceAborted, result.Outcome)
		f.repo.AssertNumberOfCalls(t, "CreateOfferAtomic", AdvanceMaxRetries)
	})
}

func TestAcceptOffer(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	offerID := uuid.New()
	spotID := uuid.New()
	freedSpotID := uuid.New()
	date := testDate()
	reservationID := uuid.New()

	t.Run("Success Re-Advances Freed Spots", func(t *testing.T) {
		f := newServiceFixture()
		accepted := &WaitlistOffer{ID: offerID, UserID: userID, SpotID: spotID, ReservationDate: date, Status: OfferStatusAccepted}
		f.repo.On("AcceptOfferAtomic", ctx, offerID, userID, mock.Anything, mock.Anything).Return(&AcceptOutcome{
			Offer:         accepted,
			ReservationID: reservationID,
			FreedSpots:    []SpotDate{{SpotID: freedSpotID, Date: date}},
		}, nil)

		// The freed spot's queue already has a pending offer by the time the
		// re-advance runs, so that advance ends without effect
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.spots.On("GetSpotGroup", ctx, freedSpotID).Return(uuid.New(), nil)
		f.repo.On("AcquireAdvanceLock", ctx, freedSpotID, date).Return(true, nil, nil)
		f.repo.On("GetPendingOfferForSpot", ctx, freedSpotID, date).Return(&WaitlistOffer{ID: uuid.New(), Status: OfferStatusPending}, nil)

		result, err := f.svc.AcceptOffer(ctx, userID, offerID)
		assert.NoError(t, err)
		assert.Equal(t, reservationID, result.ReservationID)
		assert.Equal(t, OfferStatusAccepted, result.Offer.Status)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeOfferAccepted))
		assert.Contains(t, f.auditor.actions(), "waitlist.offer_accepted")
		f.repo.AssertCalled(t, "GetPendingOfferForSpot", ctx, freedSpotID, date)
	})

	t.Run("Expired Offer", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("AcceptOfferAtomic", ctx, offerID, userID, mock.Anything, mock.Anything).Return(nil, ErrOfferExpired)

		result, err := f.svc.AcceptOffer(ctx, userID, offerID)
		assert.ErrorIs(t, err, ErrOfferExpired)
		assert.Nil(t, result)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("Already Resolved", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("AcceptOfferAtomic", ctx, offerID, userID, mock.Anything, mock.Anything).Return(nil, ErrOfferAlreadyResolved)

		_, err := f.svc.AcceptOffer(ctx, userID, offerID)
		assert.ErrorIs(t, err, ErrOfferAlreadyResolved)
	})
}

func TestRejectOffer(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	offerID := uuid.New()
	spotID := uuid.New()
	date := testDate()

	t.Run("Penalty Applied And Spot Re-Offered", func(t *testing.T) {
		f := newServiceFixture()
		rejected := &WaitlistOffer{ID: offerID, UserID: userID, SpotID: spotID, ReservationDate: date, Status: OfferStatusRejected}
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ResolveNonResponse", ctx, offerID, &userID, mock.MatchedBy(func(p NonResponseParams) bool {
			return p.Cause == OfferStatusRejected && p.PenaltyEnabled && p.PenaltyThreshold == 3 && p.BlockDuration == 7*24*time.Hour
		})).Return(&NonResponseOutcome{Offer: rejected, NonResponseCount: 1}, nil)

		// Reject immediately tries to re-offer; another advance holds the lock
		f.spots.On("GetSpotGroup", ctx, spotID).Return(uuid.New(), nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(false, nil, nil)

		offer, err := f.svc.RejectOffer(ctx, userID, offerID)
		assert.NoError(t, err)
		assert.Equal(t, OfferStatusRejected, offer.Status)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeOfferRejected))
		assert.Equal(t, 0, f.notifier.count(notifications.TypeUserBlocked))
		f.repo.AssertCalled(t, "AcquireAdvanceLock", ctx, spotID, date)
	})

	t.Run("Third Strike Blocks The User", func(t *testing.T) {
		f := newServiceFixture()
		rejected := &WaitlistOffer{ID: offerID, UserID: userID, SpotID: spotID, ReservationDate: date, Status: OfferStatusRejected}
		until := time.Now().Add(7 * 24 * time.Hour)
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ResolveNonResponse", ctx, offerID, &userID, mock.Anything).Return(&NonResponseOutcome{
			Offer:            rejected,
			NonResponseCount: 3,
			NewlyBlocked:     true,
			BlockedUntil:     &until,
		}, nil)
		f.spots.On("GetSpotGroup", ctx, spotID).Return(uuid.New(), nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotID, date).Return(false, nil, nil)

		_, err := f.svc.RejectOffer(ctx, userID, offerID)
		assert.NoError(t, err)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeUserBlocked))
		assert.Contains(t, f.auditor.actions(), "waitlist.user_blocked")
	})

	t.Run("Not The Offer Holder", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ResolveNonResponse", ctx, offerID, mock.Anything, mock.Anything).Return(nil, ErrNotAuthorized)

		_, err := f.svc.RejectOffer(ctx, userID, offerID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestProcessExpiredOffers(t *testing.T) {
	ctx := context.Background()
	date := testDate()
	spotA := uuid.New()
	spotB := uuid.New()

	t.Run("Expires Due Offers And Skips Raced Ones", func(t *testing.T) {
		f := newServiceFixture()
		offerA := WaitlistOffer{ID: uuid.New(), UserID: uuid.New(), SpotID: spotA, ReservationDate: date, Status: OfferStatusPending}
		offerB := WaitlistOffer{ID: uuid.New(), UserID: uuid.New(), SpotID: spotB, ReservationDate: date, Status: OfferStatusPending}

		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ListExpiredPendingOffers", ctx, mock.Anything, ExpiredOfferBatchSize).Return([]WaitlistOffer{offerA, offerB}, nil)

		resolvedA := offerA
		resolvedA.Status = OfferStatusExpired
		f.repo.On("ResolveNonResponse", ctx, offerA.ID, (*uuid.UUID)(nil), mock.MatchedBy(func(p NonResponseParams) bool {
			return p.Cause == OfferStatusExpired
		})).Return(&NonResponseOutcome{Offer: &resolvedA, NonResponseCount: 1}, nil)

		// offerB was accepted between listing and resolving
		f.repo.On("ResolveNonResponse", ctx, offerB.ID, (*uuid.UUID)(nil), mock.Anything).Return(&NonResponseOutcome{NoOp: true}, nil)

		f.spots.On("GetSpotGroup", ctx, spotA).Return(uuid.New(), nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotA, date).Return(false, nil, nil)

		processed, err := f.svc.ProcessExpiredOffers(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, processed)
		assert.Equal(t, 1, f.notifier.count(notifications.TypeOfferExpired))
		f.spots.AssertNotCalled(t, "GetSpotGroup", ctx, spotB)
	})

	t.Run("Nothing Due", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ListExpiredPendingOffers", ctx, mock.Anything, ExpiredOfferBatchSize).Return([]WaitlistOffer{}, nil)

		processed, err := f.svc.ProcessExpiredOffers(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, processed)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("One Failure Does Not Stop The Sweep", func(t *testing.T) {
		f := newServiceFixture()
		offerA := WaitlistOffer{ID: uuid.New(), UserID: uuid.New(), SpotID: spotA, ReservationDate: date, Status: OfferStatusPending}
		offerB := WaitlistOffer{ID: uuid.New(), UserID: uuid.New(), SpotID: spotB, ReservationDate: date, Status: OfferStatusPending}

		f.repo.On("GetSettings", ctx).Return(DefaultSettings(), nil)
		f.repo.On("ListExpiredPendingOffers", ctx, mock.Anything, ExpiredOfferBatchSize).Return([]WaitlistOffer{offerA, offerB}, nil)
		f.repo.On("ResolveNonResponse", ctx, offerA.ID, (*uuid.UUID)(nil), mock.Anything).Return(nil, errors.New("connection reset"))

		resolvedB := offerB
		resolvedB.Status = OfferStatusExpired
		f.repo.On("ResolveNonResponse", ctx, offerB.ID, (*uuid.UUID)(nil), mock.Anything).Return(&NonResponseOutcome{Offer: &resolvedB, NonResponseCount: 2}, nil)
		f.spots.On("GetSpotGroup", ctx, spotB).Return(uuid.New(), nil)
		f.repo.On("AcquireAdvanceLock", ctx, spotB, date).Return(false, nil, nil)

		processed, err := f.svc.ProcessExpiredOffers(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, processed)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture()
		updated := DefaultSettings()
		updated.AcceptanceTimeMinutes = 120
		f.repo.On("UpdateSettings", ctx, updated).Return(nil)
		f.repo.On("GetSettings", ctx).Return(updated, nil)

		result, err := f.svc.UpdateSettings(ctx, actorID, updated)
		assert.NoError(t, err)
		assert.Equal(t, 120, result.AcceptanceTimeMinutes)
		assert.Contains(t, f.auditor.actions(), "waitlist.settings_updated")
	})

	t.Run("Rejects Out Of Range Values", func(t *testing.T) {
		f := newServiceFixture()
		bad := DefaultSettings()
		bad.PenaltyThreshold = 1

		result, err := f.svc.UpdateSettings(ctx, actorID, bad)
		assert.Error(t, err)
		assert.Nil(t, result)
		f.repo.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything)
	})
}

func TestUnblockUser(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	userID := uuid.New()

	f := newServiceFixture()
	f.repo.On("ClearPenalty", ctx, userID).Return(nil)

	assert.NoError(t, f.svc.UnblockUser(ctx, actorID, userID))
	assert.Contains(t, f.auditor.actions(), "waitlist.user_unblocked")
	f.repo.AssertCalled(t, "ClearPenalty", ctx, userID)
}
