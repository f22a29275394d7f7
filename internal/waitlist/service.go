package waitlist

import (
	"context"
	"errors"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/notifications"
	"parkwise/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpotService is the slice of the parking module the waitlist depends on
type SpotService interface {
	GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error)
}

// ReservationCreator creates a confirmed reservation inside the accept
// transaction. Implemented by the reservations module.
type ReservationCreator interface {
	CreateFromOffer(tx *gorm.DB, userID, spotID uuid.UUID, date time.Time) (uuid.UUID, error)
}

// UserDirectory resolves role priorities for role-based queue ordering
type UserDirectory interface {
	RolePriorities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

// AdvanceOutcome classifies what one advancement attempt did
type AdvanceOutcome string

const (
	AdvanceOfferCreated    AdvanceOutcome = "OFFER_CREATED"
	AdvanceNoEligibleUser  AdvanceOutcome = "NO_ELIGIBLE_USER"
	AdvanceOfferPending    AdvanceOutcome = "OFFER_ALREADY_PENDING"
	AdvanceSkippedDisabled AdvanceOutcome = "WAITLIST_DISABLED"
	AdvanceSkippedLocked   AdvanceOutcome = "LOCKED"
	AdvanceAborted         AdvanceOutcome = "ABORTED"
)

// AdvanceResult reports the outcome of advancing one (spot, date) queue
type AdvanceResult struct {
	Outcome AdvanceOutcome
	Offer   *WaitlistOffer
}

// RegistrationResult reports per-group outcomes of one registration request
type RegistrationResult struct {
	Registered []WaitlistEntry `json:"registered"`
	Skipped    []SkippedGroup  `json:"skipped"`
}

// SkippedGroup names a group the registration could not join and why
type SkippedGroup struct {
	GroupID uuid.UUID `json:"group_id"`
	Reason  string    `json:"reason"`
}

// AcceptResult reports the reservation created by accepting an offer
type AcceptResult struct {
	Offer         *WaitlistOffer
	ReservationID uuid.UUID
}

// UserStatus aggregates everything a user sees about their queue standing
type UserStatus struct {
	Entries       []WaitlistEntry  `json:"entries"`
	PendingOffers []WaitlistOffer  `json:"pending_offers"`
	Penalty       *WaitlistPenalty `json:"penalty,omitempty"`
}

// Service interface defines the contract for waitlist business logic
type Service interface {
	Register(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID, date time.Time) (*RegistrationResult, error)
	CancelEntry(ctx context.Context, userID, entryID uuid.UUID) error
	GetUserStatus(ctx context.Context, userID uuid.UUID) (*UserStatus, error)

	AdvanceQueueForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*AdvanceResult, error)
	AcceptOffer(ctx context.Context, userID, offerID uuid.UUID) (*AcceptResult, error)
	RejectOffer(ctx context.Context, userID, offerID uuid.UUID) (*WaitlistOffer, error)
	ProcessExpiredOffers(ctx context.Context) (int, error)

	GetSettings(ctx context.Context) (*WaitlistSettings, error)
	UpdateSettings(ctx context.Context, actorID uuid.UUID, settings *WaitlistSettings) (*WaitlistSettings, error)
	ListEntries(ctx context.Context, groupID uuid.UUID, date time.Time, status EntryStatus) ([]WaitlistEntry, error)
	GetPenalty(ctx context.Context, userID uuid.UUID) (*WaitlistPenalty, error)
	UnblockUser(ctx context.Context, actorID, userID uuid.UUID) error
}

type service struct {
	repo         Repository
	spots        SpotService
	users        UserDirectory
	reservations ReservationCreator
	notifier     notifications.Service
	auditor      audit.Service
	log          *logger.Logger
}

// NewService creates a new waitlist service
func NewService(repo Repository, spots SpotService, users UserDirectory, reservations ReservationCreator, notifier notifications.Service, auditor audit.Service) Service {
	return &service{
		repo:         repo,
		spots:        spots,
		users:        users,
		reservations: reservations,
		notifier:     notifier,
		auditor:      auditor,
		log:          logger.GetDefault(),
	}
}

// Register joins the user to the queues of the given groups for one date.
// Registration is per group: groups the user is already queued in are
// reported as skipped while the rest succeed.
func (s *service) Register(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID, date time.Time) (*RegistrationResult, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.WaitlistEnabled {
		return nil, ErrWaitlistDisabled
	}

	now := time.Now()
	penalty, err := s.repo.GetPenalty(ctx, userID)
	if err != nil {
		return nil, err
	}
	if penalty.BlockedAt(now) {
		return nil, &BlockedError{BlockedUntil: *penalty.BlockedUntil}
	}

	groupIDs = dedupe(groupIDs)
	current, err := s.repo.CountLiveEntriesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current+len(groupIDs) > settings.MaxSimultaneous {
		return nil, &LimitError{
			Limit:     settings.MaxSimultaneous,
			Current:   current,
			Requested: len(groupIDs),
		}
	}

	date = NormalizeDate(date)
	result := &RegistrationResult{}
	for _, groupID := range groupIDs {
		position, err := s.repo.CountActiveForGroupDate(ctx, groupID, date)
		if err != nil {
			return nil, err
		}

		entry := &WaitlistEntry{
			UserID:          userID,
			GroupID:         groupID,
			ReservationDate: date,
			Status:          EntryStatusActive,
			Position:        position + 1,
		}
		err = s.repo.CreateEntry(ctx, entry)
		if err != nil {
			if errors.Is(err, ErrAlreadyQueued) {
				result.Skipped = append(result.Skipped, SkippedGroup{
					GroupID: groupID,
					Reason:  "already queued for this group and date",
				})
				continue
			}
			return nil, err
		}

		result.Registered = append(result.Registered, *entry)
		s.auditor.Record(ctx, audit.Event(audit.ActionWaitlistRegistered, userID, userID, entry.ID, "waitlist_entry", audit.JSONMap{
			"group_id":         groupID.String(),
			"reservation_date": date.Format(DateLayout),
			"position":         entry.Position,
		}))
	}

	if len(result.Registered) > 0 {
		s.notifier.Notify(ctx, notifications.TypeWaitlistRegistered, userID, map[string]interface{}{
			"reservation_date": date.Format(DateLayout),
			"group_count":      len(result.Registered),
		})
	}
	return result, nil
}

// CancelEntry removes the user's own ACTIVE entry from its queue. An entry
// holding a pending offer must be resolved through the offer instead.
func (s *service) CancelEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	entry, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return ErrNotAuthorized
	}
	if entry.Status != EntryStatusActive {
		return ErrEntryNotCancellable
	}

	err = s.repo.UpdateEntryStatus(ctx, entryID, EntryStatusActive, EntryStatusCancelled)
	if err != nil {
		if errors.Is(err, ErrStorageConflict) {
			// Raced an advance; the entry now holds a pending offer
			return ErrEntryNotCancellable
		}
		return err
	}

	s.auditor.Record(ctx, audit.Event(audit.ActionWaitlistEntryCancelled, userID, userID, entryID, "waitlist_entry", audit.JSONMap{
		"group_id":         entry.GroupID.String(),
		"reservation_date": entry.ReservationDate.Format(DateLayout),
	}))
	return nil
}

func (s *service) GetUserStatus(ctx context.Context, userID uuid.UUID) (*UserStatus, error) {
	entries, err := s.repo.ListUserEntries(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	offers, err := s.repo.ListUserOffers(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	penalty, err := s.repo.GetPenalty(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserStatus{
		Entries:       entries,
		PendingOffers: offers,
		Penalty:       penalty,
	}, nil
}

// AdvanceQueueForSpot offers a freed spot to the best eligible queued user.
// It is safe to call redundantly: an existing pending offer for the spot, a
// held advance lock, or an empty queue each end the attempt without effect.
func (s *service) AdvanceQueueForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*AdvanceResult, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.WaitlistEnabled {
		return &AdvanceResult{Outcome: AdvanceSkippedDisabled}, nil
	}

	date = NormalizeDate(date)
	groupID, err := s.spots.GetSpotGroup(ctx, spotID)
	if err != nil {
		return nil, err
	}

	ok, release, err := s.repo.AcquireAdvanceLock(ctx, spotID, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &AdvanceResult{Outcome: AdvanceSkippedLocked}, nil
	}
	defer release()

	for attempt := 0; attempt < AdvanceMaxRetries; attempt++ {
		result, err := s.tryAdvance(ctx, settings, spotID, groupID, date)
		if err != nil {
			if errors.Is(err, ErrStorageConflict) {
				continue
			}
			return nil, err
		}
		return result, nil
	}

	// Every retry lost its race; whoever won has the queue in a valid state
	s.log.InfoWithContext(ctx, "queue advance aborted after conflicts", map[string]interface{}{
		"spot_id":          spotID.String(),
		"reservation_date": date.Format(DateLayout),
	})
	return &AdvanceResult{Outcome: AdvanceAborted}, nil
}

// tryAdvance performs one winner-selection pass. ErrStorageConflict means the
// chosen entry changed state or the spot gained a pending offer concurrently.
func (s *service) tryAdvance(ctx context.Context, settings *WaitlistSettings, spotID, groupID uuid.UUID, date time.Time) (*AdvanceResult, error) {
	existing, err := s.repo.GetPendingOfferForSpot(ctx, spotID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AdvanceResult{Outcome: AdvanceOfferPending, Offer: existing}, nil
	}

	now := time.Now()
	entries, err := s.repo.ListActiveEntries(ctx, groupID, date, now)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &AdvanceResult{Outcome: AdvanceNoEligibleUser}, nil
	}

	priorities := map[uuid.UUID]int{}
	if settings.PriorityByRole {
		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.UserID)
		}
		priorities, err = s.users.RolePriorities(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	pendingUsers, err := s.repo.ListPendingOfferUserIDs(ctx, date)
	if err != nil {
		return nil, err
	}
	nonResponders, err := s.repo.ListNonResponderUserIDs(ctx, spotID, date)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uuid.UUID]bool, len(pendingUsers)+len(nonResponders))
	for _, id := range pendingUsers {
		excluded[id] = true
	}
	for _, id := range nonResponders {
		excluded[id] = true
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, Candidate{Entry: e, RolePriority: priorities[e.UserID]})
	}

	winner := SelectNextCandidate(candidates, settings.PriorityByRole, func(c Candidate) bool {
		return excluded[c.Entry.UserID]
	})
	if winner == nil {
		return &AdvanceResult{Outcome: AdvanceNoEligibleUser}, nil
	}

	expiresAt := now.Add(settings.AcceptanceWindow())
	offer, err := s.repo.CreateOfferAtomic(ctx, winner.Entry.ID, winner.Entry.UserID, spotID, date, expiresAt)
	if err != nil {
		return nil, err
	}

	s.log.LogOfferCreated(ctx, offer.ID.String(), spotID.String(), offer.UserID.String(), expiresAt)
	s.auditor.Record(ctx, audit.Event(audit.ActionOfferCreated, offer.UserID, uuid.Nil, offer.ID, "waitlist_offer", audit.JSONMap{
		"spot_id":          spotID.String(),
		"reservation_date": date.Format(DateLayout),
		"expires_at":       expiresAt.Format(time.RFC3339),
	}))
	s.notifier.Notify(ctx, notifications.TypeOfferCreated, offer.UserID, map[string]interface{}{
		"offer_id":         offer.ID.String(),
		"spot_id":          spotID.String(),
		"reservation_date": date.Format(DateLayout),
		"expires_at":       expiresAt.Format(time.RFC3339),
	})
	return &AdvanceResult{Outcome: AdvanceOfferCreated, Offer: offer}, nil
}

// AcceptOffer converts a pending offer into a confirmed reservation. Spots
// freed by expiring the user's other pending offers are re-advanced after the
// transaction commits.
func (s *service) AcceptOffer(ctx context.Context, userID, offerID uuid.UUID) (*AcceptResult, error) {
	now := time.Now()
	outcome, err := s.repo.AcceptOfferAtomic(ctx, offerID, userID, now, func(tx *gorm.DB, offer *WaitlistOffer) (uuid.UUID, error) {
		return s.reservations.CreateFromOffer(tx, offer.UserID, offer.SpotID, offer.ReservationDate)
	})
	if err != nil {
		return nil, err
	}

	offer := outcome.Offer
	s.log.LogOfferResolved(ctx, offer.ID.String(), userID.String(), string(OfferStatusAccepted))
	s.log.LogReservationCreated(ctx, outcome.ReservationID.String(), offer.SpotID.String(), userID.String())
	s.auditor.Record(ctx, audit.Event(audit.ActionOfferAccepted, userID, userID, offer.ID, "waitlist_offer", audit.JSONMap{
		"spot_id":          offer.SpotID.String(),
		"reservation_date": offer.ReservationDate.Format(DateLayout),
		"reservation_id":   outcome.ReservationID.String(),
	}))
	s.notifier.Notify(ctx, notifications.TypeOfferAccepted, userID, map[string]interface{}{
		"offer_id":         offer.ID.String(),
		"spot_id":          offer.SpotID.String(),
		"reservation_date": offer.ReservationDate.Format(DateLayout),
		"reservation_id":   outcome.ReservationID.String(),
	})

	for _, freed := range outcome.FreedSpots {
		if _, err := s.AdvanceQueueForSpot(ctx, freed.SpotID, freed.Date); err != nil {
			s.log.ErrorWithContext(ctx, "failed to re-advance freed spot", err, map[string]interface{}{
				"spot_id":          freed.SpotID.String(),
				"reservation_date": freed.Date.Format(DateLayout),
			})
		}
	}

	return &AcceptResult{Offer: offer, ReservationID: outcome.ReservationID}, nil
}

// RejectOffer declines a pending offer. The entry returns to ACTIVE, the
// non-response penalty is applied, and the spot is immediately re-offered;
// the rejecting user is not considered for this spot and date again.
func (s *service) RejectOffer(ctx context.Context, userID, offerID uuid.UUID) (*WaitlistOffer, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	outcome, err := s.repo.ResolveNonResponse(ctx, offerID, &userID, NonResponseParams{
		Cause:            OfferStatusRejected,
		Now:              now,
		PenaltyEnabled:   settings.PenaltyEnabled,
		PenaltyThreshold: settings.PenaltyThreshold,
		BlockDuration:    settings.BlockDuration(),
	})
	if err != nil {
		return nil, err
	}

	offer := outcome.Offer
	s.log.LogOfferResolved(ctx, offer.ID.String(), userID.String(), string(OfferStatusRejected))
	s.auditor.Record(ctx, audit.Event(audit.ActionOfferRejected, userID, userID, offer.ID, "waitlist_offer", audit.JSONMap{
		"spot_id":            offer.SpotID.String(),
		"reservation_date":   offer.ReservationDate.Format(DateLayout),
		"non_response_count": outcome.NonResponseCount,
	}))
	s.notifier.Notify(ctx, notifications.TypeOfferRejected, userID, map[string]interface{}{
		"offer_id":         offer.ID.String(),
		"reservation_date": offer.ReservationDate.Format(DateLayout),
	})
	s.handleBlock(ctx, userID, outcome)

	if _, err := s.AdvanceQueueForSpot(ctx, offer.SpotID, offer.ReservationDate); err != nil {
		s.log.ErrorWithContext(ctx, "failed to re-advance after reject", err, map[string]interface{}{
			"spot_id":          offer.SpotID.String(),
			"reservation_date": offer.ReservationDate.Format(DateLayout),
		})
	}
	return offer, nil
}

// ProcessExpiredOffers resolves every pending offer whose acceptance window
// has passed and re-offers the freed spots. Offers resolved concurrently are
// skipped, making the sweep idempotent. Returns how many offers it expired.
func (s *service) ProcessExpiredOffers(ctx context.Context) (int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	offers, err := s.repo.ListExpiredPendingOffers(ctx, now, ExpiredOfferBatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, offer := range offers {
		outcome, err := s.repo.ResolveNonResponse(ctx, offer.ID, nil, NonResponseParams{
			Cause:            OfferStatusExpired,
			Now:              now,
			PenaltyEnabled:   settings.PenaltyEnabled,
			PenaltyThreshold: settings.PenaltyThreshold,
			BlockDuration:    settings.BlockDuration(),
		})
		if err != nil {
			s.log.ErrorWithContext(ctx, "failed to expire offer", err, map[string]interface{}{
				"offer_id": offer.ID.String(),
			})
			continue
		}
		if outcome.NoOp {
			continue
		}
		processed++

		s.log.LogOfferResolved(ctx, offer.ID.String(), offer.UserID.String(), string(OfferStatusExpired))
		s.auditor.Record(ctx, audit.Event(audit.ActionOfferExpired, offer.UserID, uuid.Nil, offer.ID, "waitlist_offer", audit.JSONMap{
			"spot_id":            offer.SpotID.String(),
			"reservation_date":   offer.ReservationDate.Format(DateLayout),
			"non_response_count": outcome.NonResponseCount,
		}))
		s.notifier.Notify(ctx, notifications.TypeOfferExpired, offer.UserID, map[string]interface{}{
			"offer_id":         offer.ID.String(),
			"reservation_date": offer.ReservationDate.Format(DateLayout),
		})
		s.handleBlock(ctx, offer.UserID, outcome)

		if _, err := s.AdvanceQueueForSpot(ctx, offer.SpotID, offer.ReservationDate); err != nil {
			s.log.ErrorWithContext(ctx, "failed to re-advance after expiry", err, map[string]interface{}{
				"spot_id":          offer.SpotID.String(),
				"reservation_date": offer.ReservationDate.Format(DateLayout),
			})
		}
	}
	return processed, nil
}

// handleBlock emits the side effects of a penalty threshold being crossed
func (s *service) handleBlock(ctx context.Context, userID uuid.UUID, outcome *NonResponseOutcome) {
	if !outcome.NewlyBlocked || outcome.BlockedUntil == nil {
		return
	}
	s.log.LogUserBlocked(ctx, userID.String(), *outcome.BlockedUntil)
	s.auditor.Record(ctx, audit.Event(audit.ActionUserBlocked, userID, uuid.Nil, uuid.Nil, "waitlist_penalty", audit.JSONMap{
		"blocked_until":      outcome.BlockedUntil.Format(time.RFC3339),
		"non_response_count": outcome.NonResponseCount,
	}))
	s.notifier.Notify(ctx, notifications.TypeUserBlocked, userID, map[string]interface{}{
		"blocked_until": outcome.BlockedUntil.Format(time.RFC3339),
	})
}

// Settings and administration

func (s *service) GetSettings(ctx context.Context) (*WaitlistSettings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *service) UpdateSettings(ctx context.Context, actorID uuid.UUID, settings *WaitlistSettings) (*WaitlistSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event(audit.ActionSettingsUpdated, uuid.Nil, actorID, uuid.Nil, "waitlist_settings", audit.JSONMap{
		"waitlist_enabled":        settings.WaitlistEnabled,
		"acceptance_time_minutes": settings.AcceptanceTimeMinutes,
		"max_simultaneous":        settings.MaxSimultaneous,
		"priority_by_role":        settings.PriorityByRole,
		"penalty_enabled":         settings.PenaltyEnabled,
		"penalty_threshold":       settings.PenaltyThreshold,
		"penalty_duration_days":   settings.PenaltyDurationDays,
	}))
	return s.repo.GetSettings(ctx)
}

func (s *service) ListEntries(ctx context.Context, groupID uuid.UUID, date time.Time, status EntryStatus) ([]WaitlistEntry, error) {
	return s.repo.ListEntries(ctx, groupID, date, status)
}

func (s *service) GetPenalty(ctx context.Context, userID uuid.UUID) (*WaitlistPenalty, error) {
	return s.repo.GetPenalty(ctx, userID)
}

// UnblockUser is the admin override clearing a user's penalty state entirely,
// including the non-response count.
func (s *service) UnblockUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if err := s.repo.ClearPenalty(ctx, userID); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Event(audit.ActionUserUnblocked, userID, actorID, uuid.Nil, "waitlist_penalty", nil))
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
