package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for reservation dates (no time component)
const DateLayout = "2006-01-02"

// NormalizeDate truncates a timestamp to its calendar date in UTC. All
// reservation_date columns store midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EntryStatus represents the status of a waitlist entry
type EntryStatus string

const (
	EntryStatusActive       EntryStatus = "ACTIVE"
	EntryStatusOfferPending EntryStatus = "OFFER_PENDING"
	EntryStatusCompleted    EntryStatus = "COMPLETED"
	EntryStatusCancelled    EntryStatus = "CANCELLED"
)

// IsValid checks if the entry status is a known value
func (es EntryStatus) IsValid() bool {
	switch es {
	case EntryStatusActive, EntryStatusOfferPending, EntryStatusCompleted, EntryStatusCancelled:
		return true
	default:
		return false
	}
}

// IsLive reports whether the entry still occupies a queue slot and counts
// against the simultaneous-entry limit
func (es EntryStatus) IsLive() bool {
	return es == EntryStatusActive || es == EntryStatusOfferPending
}

// CanTransitionTo checks if the status can transition to the target status
func (es EntryStatus) CanTransitionTo(target EntryStatus) bool {
	validTransitions := map[EntryStatus][]EntryStatus{
		EntryStatusActive:       {EntryStatusOfferPending, EntryStatusCancelled},
		EntryStatusOfferPending: {EntryStatusActive, EntryStatusCompleted, EntryStatusCancelled},
		EntryStatusCompleted:    {}, // Terminal state
		EntryStatusCancelled:    {}, // Terminal state
	}

	for _, allowed := range validTransitions[es] {
		if allowed == target {
			return true
		}
	}
	return false
}

// OfferStatus represents the status of a waitlist offer
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
	OfferStatusExpired  OfferStatus = "EXPIRED"
)

// IsTerminal reports whether the offer can no longer change state
func (os OfferStatus) IsTerminal() bool {
	return os == OfferStatusAccepted || os == OfferStatusRejected || os == OfferStatusExpired
}

// WaitlistEntry represents a user's standing registration in a group/date
// queue. At most one ACTIVE/OFFER_PENDING entry may exist per
// (user, group, date); the partial unique index in the constraints migration
// enforces it.
type WaitlistEntry struct {
	ID              uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID          uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	GroupID         uuid.UUID   `json:"group_id" gorm:"type:uuid;not null;index:idx_entries_group_date"`
	ReservationDate time.Time   `json:"reservation_date" gorm:"type:date;not null;index:idx_entries_group_date"`
	Status          EntryStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Position        int         `json:"position" gorm:"not null"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// WaitlistOffer is a time-bounded proposal of one freed spot to one queued
// user. At most one PENDING offer may exist per (spot, date); once it leaves
// PENDING it is never mutated again.
type WaitlistOffer struct {
	ID              uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EntryID         uuid.UUID   `json:"entry_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	SpotID          uuid.UUID   `json:"spot_id" gorm:"type:uuid;not null;index:idx_offers_spot_date"`
	ReservationDate time.Time   `json:"reservation_date" gorm:"type:date;not null;index:idx_offers_spot_date"`
	Status          OfferStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt       time.Time   `json:"expires_at" gorm:"not null;index"`
	RespondedAt     *time.Time  `json:"responded_at,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsExpired reports whether the acceptance window has passed
func (o *WaitlistOffer) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// TimeRemaining returns the time left in the acceptance window, nil once gone
func (o *WaitlistOffer) TimeRemaining(now time.Time) *time.Duration {
	remaining := o.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return nil
	}
	return &remaining
}

// WaitlistPenalty tracks a user's non-responses. A row is created lazily on
// the first rejected or expired offer.
type WaitlistPenalty struct {
	UserID           uuid.UUID  `json:"user_id" gorm:"primaryKey;type:uuid"`
	NonResponseCount int        `json:"non_response_count" gorm:"not null;default:0"`
	IsBlocked        bool       `json:"is_blocked" gorm:"not null;default:false"`
	BlockedUntil     *time.Time `json:"blocked_until,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BlockedAt reports whether the user is blocked from receiving offers at the
// given instant. An elapsed blocked_until means not blocked, regardless of
// the stored flag.
func (p *WaitlistPenalty) BlockedAt(now time.Time) bool {
	return p != nil && p.IsBlocked && p.BlockedUntil != nil && p.BlockedUntil.After(now)
}

// RecordNonResponse folds one rejected or lapsed offer into the tally. A
// stale blocked flag left over from an elapsed block is cleared first so the
// stored row matches the effective state. Reaching the threshold while
// unblocked starts a block of blockDuration; an active block is never
// extended. Returns true when this call started a block.
func (p *WaitlistPenalty) RecordNonResponse(now time.Time, threshold int, blockDuration time.Duration) bool {
	if p.IsBlocked && !p.BlockedAt(now) {
		p.IsBlocked = false
		p.BlockedUntil = nil
	}

	p.NonResponseCount++
	if p.IsBlocked || p.NonResponseCount < threshold {
		return false
	}

	blockedUntil := now.Add(blockDuration)
	p.IsBlocked = true
	p.BlockedUntil = &blockedUntil
	return true
}

// WaitlistSettings is the global configuration singleton (row id 1). It is
// re-read from the database at the start of every state transition so an
// admin mutation is never acted on stale.
type WaitlistSettings struct {
	ID                    int       `json:"-" gorm:"primaryKey"`
	WaitlistEnabled       bool      `json:"waitlist_enabled" gorm:"not null;default:true"`
	AcceptanceTimeMinutes int       `json:"acceptance_time_minutes" gorm:"not null;default:60"`
	MaxSimultaneous       int       `json:"max_simultaneous" gorm:"not null;default:3"`
	PriorityByRole        bool      `json:"priority_by_role" gorm:"not null;default:false"`
	PenaltyEnabled        bool      `json:"penalty_enabled" gorm:"not null;default:true"`
	PenaltyThreshold      int       `json:"penalty_threshold" gorm:"not null;default:3"`
	PenaltyDurationDays   int       `json:"penalty_duration_days" gorm:"not null;default:7"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SettingsRowID is the fixed primary key of the singleton settings row
const SettingsRowID = 1

// DefaultSettings returns the settings used until an admin changes them
func DefaultSettings() *WaitlistSettings {
	return &WaitlistSettings{
		ID:                    SettingsRowID,
		WaitlistEnabled:       true,
		AcceptanceTimeMinutes: 60,
		MaxSimultaneous:       3,
		PriorityByRole:        false,
		PenaltyEnabled:        true,
		PenaltyThreshold:      3,
		PenaltyDurationDays:   7,
	}
}

// Validate checks the admin-configurable ranges
func (s *WaitlistSettings) Validate() error {
	if s.AcceptanceTimeMinutes < 30 || s.AcceptanceTimeMinutes > 1440 {
		return ErrInvalidSettings("acceptance_time_minutes must be between 30 and 1440")
	}
	if s.MaxSimultaneous < 1 || s.MaxSimultaneous > 10 {
		return ErrInvalidSettings("max_simultaneous must be between 1 and 10")
	}
	if s.PenaltyThreshold < 2 || s.PenaltyThreshold > 10 {
		return ErrInvalidSettings("penalty_threshold must be between 2 and 10")
	}
	if s.PenaltyDurationDays < 1 || s.PenaltyDurationDays > 30 {
		return ErrInvalidSettings("penalty_duration_days must be between 1 and 30")
	}
	return nil
}

// AcceptanceWindow returns the offer lifetime as a duration
func (s *WaitlistSettings) AcceptanceWindow() time.Duration {
	return time.Duration(s.AcceptanceTimeMinutes) * time.Minute
}

// BlockDuration returns how long a newly blocked user stays blocked
func (s *WaitlistSettings) BlockDuration() time.Duration {
	return time.Duration(s.PenaltyDurationDays) * 24 * time.Hour
}

// Redis key helpers

// AdvanceLockKey returns the Redis key serialising queue advancement for one
// (spot, date)
func AdvanceLockKey(spotID uuid.UUID, date time.Time) string {
	return "waitlist:advance:" + spotID.String() + ":" + date.Format(DateLayout)
}

const (
	// AdvanceLockTTL bounds how long an advance may hold the Redis lock
	AdvanceLockTTL = 10 * time.Second

	// ExpiredOfferBatchSize is how many expired offers one sweep pass handles
	ExpiredOfferBatchSize = 100

	// AdvanceMaxRetries bounds retry-on-conflict during winner selection
	AdvanceMaxRetries = 3
)
