package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// OfferResponse is the wire shape of an offer, including the live countdown
type OfferResponse struct {
	ID               uuid.UUID   `json:"id"`
	SpotID           uuid.UUID   `json:"spot_id"`
	ReservationDate  string      `json:"reservation_date"`
	Status           OfferStatus `json:"status"`
	ExpiresAt        time.Time   `json:"expires_at"`
	SecondsRemaining int64       `json:"seconds_remaining"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewOfferResponse converts an offer for the wire
func NewOfferResponse(offer *WaitlistOffer, now time.Time) OfferResponse {
	resp := OfferResponse{
		ID:              offer.ID,
		SpotID:          offer.SpotID,
		ReservationDate: offer.ReservationDate.Format(DateLayout),
		Status:          offer.Status,
		ExpiresAt:       offer.ExpiresAt,
		CreatedAt:       offer.CreatedAt,
	}
	if remaining := offer.TimeRemaining(now); remaining != nil {
		resp.SecondsRemaining = int64(remaining.Seconds())
	}
	return resp
}

// EntryResponse is the wire shape of a queue entry
type EntryResponse struct {
	ID              uuid.UUID   `json:"id"`
	GroupID         uuid.UUID   `json:"group_id"`
	ReservationDate string      `json:"reservation_date"`
	Status          EntryStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

func NewEntryResponse(entry *WaitlistEntry) EntryResponse {
	return EntryResponse{
		ID:              entry.ID,
		GroupID:         entry.GroupID,
		ReservationDate: entry.ReservationDate.Format(DateLayout),
		Status:          entry.Status,
		CreatedAt:       entry.CreatedAt,
	}
}

// PenaltyResponse exposes a user's penalty standing
type PenaltyResponse struct {
	NonResponseCount int        `json:"non_response_count"`
	IsBlocked        bool       `json:"is_blocked"`
	BlockedUntil     *time.Time `json:"blocked_until,omitempty"`
}

// NewPenaltyResponse reports the effective block state at the given instant,
// not the raw stored flag
func NewPenaltyResponse(penalty *WaitlistPenalty, now time.Time) *PenaltyResponse {
	if penalty == nil {
		return nil
	}
	resp := &PenaltyResponse{
		NonResponseCount: penalty.NonResponseCount,
		IsBlocked:        penalty.BlockedAt(now),
	}
	if resp.IsBlocked {
		resp.BlockedUntil = penalty.BlockedUntil
	}
	return resp
}

// StatusResponse aggregates the caller's live queue standing
type StatusResponse struct {
	Entries       []EntryResponse  `json:"entries"`
	PendingOffers []OfferResponse  `json:"pending_offers"`
	Penalty       *PenaltyResponse `json:"penalty,omitempty"`
}

// NewStatusResponse converts a UserStatus for the wire
func NewStatusResponse(status *UserStatus, now time.Time) StatusResponse {
	resp := StatusResponse{
		Entries:       make([]EntryResponse, 0, len(status.Entries)),
		PendingOffers: make([]OfferResponse, 0, len(status.PendingOffers)),
		Penalty:       NewPenaltyResponse(status.Penalty, now),
	}
	for i := range status.Entries {
		resp.Entries = append(resp.Entries, NewEntryResponse(&status.Entries[i]))
	}
	for i := range status.PendingOffers {
		resp.PendingOffers = append(resp.PendingOffers, NewOfferResponse(&status.PendingOffers[i], now))
	}
	return resp
}

// AcceptResponse reports the reservation created by accepting an offer
type AcceptResponse struct {
	ReservationID   uuid.UUID `json:"reservation_id"`
	SpotID          uuid.UUID `json:"spot_id"`
	ReservationDate string    `json:"reservation_date"`
}
