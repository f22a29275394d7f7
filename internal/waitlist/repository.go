package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkwise/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SpotDate identifies one freed spot needing re-advancement after a commit
type SpotDate struct {
	SpotID uuid.UUID
	Date   time.Time
}

// AcceptOutcome reports everything an accepted offer changed, so the service
// can advance the queues freed as a side effect after the commit
type AcceptOutcome struct {
	Offer         *WaitlistOffer
	ReservationID uuid.UUID
	// FreedSpots are the spots of the user's other pending offers for the
	// same date, expired inside the accept transaction
	FreedSpots []SpotDate
}

// NonResponseParams configures a reject or expire transition
type NonResponseParams struct {
	Cause            OfferStatus // OfferStatusRejected or OfferStatusExpired
	Now              time.Time
	PenaltyEnabled   bool
	PenaltyThreshold int
	BlockDuration    time.Duration
}

// NonResponseOutcome reports the result of a reject/expire transition
type NonResponseOutcome struct {
	Offer *WaitlistOffer
	// NoOp is set when the sweep raced another resolver and the offer was
	// already terminal; nothing changed
	NoOp             bool
	NonResponseCount int
	NewlyBlocked     bool
	BlockedUntil     *time.Time
}

// Repository interface defines the contract for waitlist data operations.
// The *Atomic methods are the transaction boundaries of the state machine:
// each executes its multi-row effects in one database transaction.
type Repository interface {
	// Settings
	GetSettings(ctx context.Context) (*WaitlistSettings, error)
	UpdateSettings(ctx context.Context, settings *WaitlistSettings) error

	// Entries
	CreateEntry(ctx context.Context, entry *WaitlistEntry) error
	GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)
	GetLiveEntry(ctx context.Context, userID, groupID uuid.UUID, date time.Time) (*WaitlistEntry, error)
	ListActiveEntries(ctx context.Context, groupID uuid.UUID, date time.Time, excludeBlockedAt time.Time) ([]WaitlistEntry, error)
	ListEntries(ctx context.Context, groupID uuid.UUID, date time.Time, status EntryStatus) ([]WaitlistEntry, error)
	ListUserEntries(ctx context.Context, userID uuid.UUID, liveOnly bool) ([]WaitlistEntry, error)
	CountLiveEntriesForUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountActiveForGroupDate(ctx context.Context, groupID uuid.UUID, date time.Time) (int, error)
	UpdateEntryStatus(ctx context.Context, id uuid.UUID, from, to EntryStatus) error

	// Offers
	GetOfferByID(ctx context.Context, id uuid.UUID) (*WaitlistOffer, error)
	GetPendingOfferForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*WaitlistOffer, error)
	ListPendingOfferUserIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error)
	ListNonResponderUserIDs(ctx context.Context, spotID uuid.UUID, date time.Time) ([]uuid.UUID, error)
	ListExpiredPendingOffers(ctx context.Context, now time.Time, limit int) ([]WaitlistOffer, error)
	ListUserOffers(ctx context.Context, userID uuid.UUID, pendingOnly bool) ([]WaitlistOffer, error)

	// State machine transactions
	CreateOfferAtomic(ctx context.Context, entryID, userID, spotID uuid.UUID, date, expiresAt time.Time) (*WaitlistOffer, error)
	AcceptOfferAtomic(ctx context.Context, offerID, userID uuid.UUID, now time.Time, createReservation func(tx *gorm.DB, offer *WaitlistOffer) (uuid.UUID, error)) (*AcceptOutcome, error)
	ResolveNonResponse(ctx context.Context, offerID uuid.UUID, actorID *uuid.UUID, params NonResponseParams) (*NonResponseOutcome, error)

	// Penalties
	GetPenalty(ctx context.Context, userID uuid.UUID) (*WaitlistPenalty, error)
	ClearPenalty(ctx context.Context, userID uuid.UUID) error

	// AcquireAdvanceLock serialises advancement for one (spot, date). The
	// release func must be called when done; ok=false means another advance
	// currently holds the lock.
	AcquireAdvanceLock(ctx context.Context, spotID uuid.UUID, date time.Time) (ok bool, release func(), err error)
}

type repository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewRepository creates a new waitlist repository
func NewRepository(db *gorm.DB, redisClient *redis.Client) Repository {
	return &repository{
		db:    db,
		redis: redisClient,
	}
}

// Settings

func (r *repository) GetSettings(ctx context.Context) (*WaitlistSettings, error) {
	var settings WaitlistSettings
	err := r.db.WithContext(ctx).
		Where(WaitlistSettings{ID: SettingsRowID}).
		Attrs(*DefaultSettings()).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load waitlist settings: %w", err)
	}
	return &settings, nil
}

func (r *repository) UpdateSettings(ctx context.Context, settings *WaitlistSettings) error {
	settings.ID = SettingsRowID
	err := r.db.WithContext(ctx).
		Model(&WaitlistSettings{}).
		Where("id = ?", SettingsRowID).
		Updates(map[string]interface{}{
			"waitlist_enabled":        settings.WaitlistEnabled,
			"acceptance_time_minutes": settings.AcceptanceTimeMinutes,
			"max_simultaneous":        settings.MaxSimultaneous,
			"priority_by_role":        settings.PriorityByRole,
			"penalty_enabled":         settings.PenaltyEnabled,
			"penalty_threshold":       settings.PenaltyThreshold,
			"penalty_duration_days":   settings.PenaltyDurationDays,
			"updated_at":              time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update waitlist settings: %w", err)
	}
	return nil
}

// Entries

func (r *repository) CreateEntry(ctx context.Context, entry *WaitlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.ReservationDate = NormalizeDate(entry.ReservationDate)

	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyQueued
		}
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) GetLiveEntry(ctx context.Context, userID, groupID uuid.UUID, date time.Time) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ? AND reservation_date = ? AND status IN ?",
			userID, groupID, NormalizeDate(date),
			[]EntryStatus{EntryStatusActive, EntryStatusOfferPending}).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get live entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListActiveEntries(ctx context.Context, groupID uuid.UUID, date time.Time, excludeBlockedAt time.Time) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND reservation_date = ? AND status = ?",
			groupID, NormalizeDate(date), EntryStatusActive).
		Where(`user_id NOT IN (
			SELECT user_id FROM waitlist_penalties
			WHERE is_blocked = true AND blocked_until > ?)`, excludeBlockedAt).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ListEntries(ctx context.Context, groupID uuid.UUID, date time.Time, status EntryStatus) ([]WaitlistEntry, error) {
	query := r.db.WithContext(ctx).Model(&WaitlistEntry{})
	if groupID != uuid.Nil {
		query = query.Where("group_id = ?", groupID)
	}
	if !date.IsZero() {
		query = query.Where("reservation_date = ?", NormalizeDate(date))
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []WaitlistEntry
	err := query.Order("created_at ASC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ListUserEntries(ctx context.Context, userID uuid.UUID, liveOnly bool) ([]WaitlistEntry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if liveOnly {
		query = query.Where("status IN ?", []EntryStatus{EntryStatusActive, EntryStatusOfferPending})
	}

	var entries []WaitlistEntry
	err := query.Order("reservation_date ASC, created_at ASC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user entries: %w", err)
	}
	return entries, nil
}

func (r *repository) CountLiveEntriesForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("user_id = ? AND status IN ?", userID,
			[]EntryStatus{EntryStatusActive, EntryStatusOfferPending}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count live entries: %w", err)
	}
	return int(count), nil
}

func (r *repository) CountActiveForGroupDate(ctx context.Context, groupID uuid.UUID, date time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("group_id = ? AND reservation_date = ? AND status = ?",
			groupID, NormalizeDate(date), EntryStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active entries: %w", err)
	}
	return int(count), nil
}

// UpdateEntryStatus performs a guarded status transition; ErrStorageConflict
// signals the entry was no longer in the expected state.
func (r *repository) UpdateEntryStatus(ctx context.Context, id uuid.UUID, from, to EntryStatus) error {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update entry status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStorageConflict
	}
	return nil
}

// Offers

func (r *repository) GetOfferByID(ctx context.Context, id uuid.UUID) (*WaitlistOffer, error) {
	var offer WaitlistOffer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (r *repository) GetPendingOfferForSpot(ctx context.Context, spotID uuid.UUID, date time.Time) (*WaitlistOffer, error) {
	var offer WaitlistOffer
	err := r.db.WithContext(ctx).
		Where("spot_id = ? AND reservation_date = ? AND status = ?",
			spotID, NormalizeDate(date), OfferStatusPending).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending offer: %w", err)
	}
	return &offer, nil
}

func (r *repository) ListPendingOfferUserIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&WaitlistOffer{}).
		Where("reservation_date = ? AND status = ?", NormalizeDate(date), OfferStatusPending).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending offer users: %w", err)
	}
	return userIDs, nil
}

func (r *repository) ListNonResponderUserIDs(ctx context.Context, spotID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&WaitlistOffer{}).
		Where("spot_id = ? AND reservation_date = ? AND status IN ?",
			spotID, NormalizeDate(date),
			[]OfferStatus{OfferStatusRejected, OfferStatusExpired}).
		Distinct().
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list non-responders: %w", err)
	}
	return userIDs, nil
}

func (r *repository) ListExpiredPendingOffers(ctx context.Context, now time.Time, limit int) ([]WaitlistOffer, error) {
	var offers []WaitlistOffer
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", OfferStatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired offers: %w", err)
	}
	return offers, nil
}

func (r *repository) ListUserOffers(ctx context.Context, userID uuid.UUID, pendingOnly bool) ([]WaitlistOffer, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if pendingOnly {
		query = query.Where("status = ?", OfferStatusPending)
	}

	var offers []WaitlistOffer
	err := query.Order("created_at DESC").Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user offers: %w", err)
	}
	return offers, nil
}

// State machine transactions

// CreateOfferAtomic moves the entry to OFFER_PENDING and inserts the offer in
// one transaction. The partial unique index on (spot_id, reservation_date)
// WHERE status = 'PENDING' is the final arbiter when two advances race; its
// violation surfaces as ErrStorageConflict and rolls back the entry update.
func (r *repository) CreateOfferAtomic(ctx context.Context, entryID, userID, spotID uuid.UUID, date, expiresAt time.Time) (*WaitlistOffer, error) {
	offer := &WaitlistOffer{
		ID:              uuid.New(),
		EntryID:         entryID,
		UserID:          userID,
		SpotID:          spotID,
		ReservationDate: NormalizeDate(date),
		Status:          OfferStatusPending,
		ExpiresAt:       expiresAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&WaitlistEntry{}).
			Where("id = ? AND status = ?", entryID, EntryStatusActive).
			Updates(map[string]interface{}{
				"status":     EntryStatusOfferPending,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark entry offer_pending: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStorageConflict
		}

		if err := tx.Create(offer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStorageConflict
			}
			return fmt.Errorf("failed to create offer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// AcceptOfferAtomic executes the whole accept effect in one transaction:
// reservation creation, offer to ACCEPTED, owning entry to COMPLETED, all of
// the user's other live entries for the date to CANCELLED, and all of their
// other pending offers for the date to EXPIRED. The freed spots of those
// expired offers are reported back for post-commit re-advancement.
func (r *repository) AcceptOfferAtomic(ctx context.Context, offerID, userID uuid.UUID, now time.Time, createReservation func(tx *gorm.DB, offer *WaitlistOffer) (uuid.UUID, error)) (*AcceptOutcome, error) {
	outcome := &AcceptOutcome{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer WaitlistOffer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", offerID).
			First(&offer).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("failed to lock offer: %w", err)
		}

		if offer.Status.IsTerminal() {
			return ErrOfferAlreadyResolved
		}
		if offer.UserID != userID {
			return ErrNotAuthorized
		}
		if offer.IsExpired(now) {
			// Left pending for the expiry sweep so the penalty side of the
			// expiration is applied exactly once
			return ErrOfferExpired
		}

		reservationID, err := createReservation(tx, &offer)
		if err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		outcome.ReservationID = reservationID

		respondedAt := now
		err = tx.Model(&WaitlistOffer{}).
			Where("id = ?", offer.ID).
			Updates(map[string]interface{}{
				"status":       OfferStatusAccepted,
				"responded_at": respondedAt,
				"updated_at":   now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to accept offer: %w", err)
		}

		err = tx.Model(&WaitlistEntry{}).
			Where("id = ? AND status = ?", offer.EntryID, EntryStatusOfferPending).
			Updates(map[string]interface{}{
				"status":     EntryStatusCompleted,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to complete entry: %w", err)
		}

		// Expire the user's other pending offers for this date before the
		// catch-all entry cancellation, collecting their spots for re-offer
		var siblingOffers []WaitlistOffer
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND reservation_date = ? AND status = ? AND id <> ?",
				userID, offer.ReservationDate, OfferStatusPending, offer.ID).
			Find(&siblingOffers).Error
		if err != nil {
			return fmt.Errorf("failed to load sibling offers: %w", err)
		}
		for _, sibling := range siblingOffers {
			err = tx.Model(&WaitlistOffer{}).
				Where("id = ?", sibling.ID).
				Updates(map[string]interface{}{
					"status":     OfferStatusExpired,
					"updated_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to expire sibling offer: %w", err)
			}
			outcome.FreedSpots = append(outcome.FreedSpots, SpotDate{
				SpotID: sibling.SpotID,
				Date:   sibling.ReservationDate,
			})
		}

		// The user got a spot for this date; every remaining live entry for
		// the date, in any group, is moot
		err = tx.Model(&WaitlistEntry{}).
			Where("user_id = ? AND reservation_date = ? AND status IN ? AND id <> ?",
				userID, offer.ReservationDate,
				[]EntryStatus{EntryStatusActive, EntryStatusOfferPending},
				offer.EntryID).
			Updates(map[string]interface{}{
				"status":     EntryStatusCancelled,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to cancel remaining entries: %w", err)
		}

		offer.Status = OfferStatusAccepted
		offer.RespondedAt = &respondedAt
		outcome.Offer = &offer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ResolveNonResponse applies a reject or expire transition with its penalty
// effect in one transaction. actorID is the responding user on an explicit
// reject and nil for the system-driven expiry sweep; for the sweep an
// already-terminal offer is a no-op, not an error. The row lock on the offer
// guarantees the penalty increment happens at most once per offer.
func (r *repository) ResolveNonResponse(ctx context.Context, offerID uuid.UUID, actorID *uuid.UUID, params NonResponseParams) (*NonResponseOutcome, error) {
	outcome := &NonResponseOutcome{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer WaitlistOffer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", offerID).
			First(&offer).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("failed to lock offer: %w", err)
		}

		if offer.Status.IsTerminal() {
			if actorID == nil {
				outcome.NoOp = true
				outcome.Offer = &offer
				return nil
			}
			return ErrOfferAlreadyResolved
		}
		if actorID != nil {
			if offer.UserID != *actorID {
				return ErrNotAuthorized
			}
			if offer.IsExpired(params.Now) {
				return ErrOfferExpired
			}
		}

		updates := map[string]interface{}{
			"status":     params.Cause,
			"updated_at": params.Now,
		}
		if actorID != nil {
			updates["responded_at"] = params.Now
		}
		if err := tx.Model(&WaitlistOffer{}).Where("id = ?", offer.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to resolve offer: %w", err)
		}

		// The user stays queued: the entry returns to ACTIVE and competes
		// normally on the next advance. A zero-row update means the entry
		// was cancelled meanwhile, which is fine.
		err = tx.Model(&WaitlistEntry{}).
			Where("id = ? AND status = ?", offer.EntryID, EntryStatusOfferPending).
			Updates(map[string]interface{}{
				"status":     EntryStatusActive,
				"updated_at": params.Now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to reactivate entry: %w", err)
		}

		if params.PenaltyEnabled {
			if err := r.applyPenalty(tx, offer.UserID, params, outcome); err != nil {
				return err
			}
		}

		offer.Status = params.Cause
		outcome.Offer = &offer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyPenalty increments the user's non-response count inside the resolving
// transaction and blocks them when the threshold is reached. An active block
// is never extended by further non-responses.
func (r *repository) applyPenalty(tx *gorm.DB, userID uuid.UUID, params NonResponseParams, outcome *NonResponseOutcome) error {
	var penalty WaitlistPenalty
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&penalty).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		penalty = WaitlistPenalty{UserID: userID}
		if err := tx.Create(&penalty).Error; err != nil {
			return fmt.Errorf("failed to create penalty row: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to lock penalty row: %w", err)
	}

	if penalty.RecordNonResponse(params.Now, params.PenaltyThreshold, params.BlockDuration) {
		outcome.NewlyBlocked = true
		outcome.BlockedUntil = penalty.BlockedUntil
	}

	err = tx.Model(&WaitlistPenalty{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"non_response_count": penalty.NonResponseCount,
			"is_blocked":         penalty.IsBlocked,
			"blocked_until":      penalty.BlockedUntil,
			"updated_at":         params.Now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update penalty: %w", err)
	}

	outcome.NonResponseCount = penalty.NonResponseCount
	return nil
}

// Penalties

func (r *repository) GetPenalty(ctx context.Context, userID uuid.UUID) (*WaitlistPenalty, error) {
	var penalty WaitlistPenalty
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&penalty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get penalty: %w", err)
	}
	return &penalty, nil
}

func (r *repository) ClearPenalty(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&WaitlistPenalty{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"non_response_count": 0,
			"is_blocked":         false,
			"blocked_until":      nil,
			"updated_at":         time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear penalty: %w", err)
	}
	return nil
}

// Locking

func (r *repository) AcquireAdvanceLock(ctx context.Context, spotID uuid.UUID, date time.Time) (bool, func(), error) {
	if r.redis == nil {
		// Without Redis the partial unique index still guarantees the
		// single-pending-offer invariant; the lock only reduces conflict churn
		return true, func() {}, nil
	}

	key := AdvanceLockKey(spotID, NormalizeDate(date))
	ok, err := r.redis.SetNX(ctx, key, "locked", AdvanceLockTTL).Result()
	if err != nil {
		// Same degradation as a missing client: the index holds the
		// invariant, so a broken Redis must not stall the queue
		logger.GetDefault().WarnWithContext(ctx, "advance lock unavailable, advancing without it", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true, func() {}, nil
	}
	if !ok {
		return false, func() {}, nil
	}

	release := func() {
		r.redis.Del(context.Background(), key)
	}
	return true, release, nil
}
