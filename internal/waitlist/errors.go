package waitlist

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors crossing the waitlist service boundary. Controllers map
// these to HTTP responses; internal storage races (ErrStorageConflict) are
// retried and never surfaced to callers.
var (
	ErrWaitlistDisabled     = errors.New("waitlist is disabled")
	ErrUserBlocked          = errors.New("user is blocked from the waitlist")
	ErrLimitExceeded        = errors.New("simultaneous registration limit exceeded")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrOfferExpired         = errors.New("offer has expired")
	ErrOfferAlreadyResolved = errors.New("offer already resolved")
	ErrNotAuthorized        = errors.New("not authorized for this offer")
	ErrEntryNotFound        = errors.New("waitlist entry not found")
	ErrEntryNotCancellable  = errors.New("entry cannot be cancelled in its current state")
	ErrAlreadyQueued        = errors.New("already queued for this group and date")
	ErrStorageConflict      = errors.New("storage conflict")
)

// BlockedError carries the end of the block window so callers can tell the
// user when they may register again
type BlockedError struct {
	BlockedUntil time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("user is blocked from the waitlist until %s", e.BlockedUntil.Format(time.RFC3339))
}

func (e *BlockedError) Unwrap() error { return ErrUserBlocked }

// LimitError reports how many more registrations the user may still make
type LimitError struct {
	Limit     int
	Current   int
	Requested int
}

func (e *LimitError) Remaining() int {
	remaining := e.Limit - e.Current
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("registration would exceed the simultaneous limit of %d (%d allowed)", e.Limit, e.Remaining())
}

func (e *LimitError) Unwrap() error { return ErrLimitExceeded }

// ErrInvalidSettings marks a settings update outside the allowed ranges
type ErrInvalidSettings string

func (e ErrInvalidSettings) Error() string { return string(e) }
