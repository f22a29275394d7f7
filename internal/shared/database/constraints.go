package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency
// control. These partial unique indexes are the final arbiters of the
// single-winner invariants; application-level locks only reduce contention.
func MigrateConstraints(db *gorm.DB) error {
	// At most one PENDING offer per spot and date. Two concurrent queue
	// advances for the same freed spot cannot both win.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_pending_offer_per_spot_date
		ON waitlist_offers (spot_id, reservation_date)
		WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	// At most one live queue entry per user, group and date. Re-registering
	// is rejected by the database even when two requests race.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_live_entry_per_user_group_date
		ON waitlist_entries (user_id, group_id, reservation_date)
		WHERE status IN ('ACTIVE', 'OFFER_PENDING');
	`).Error
	if err != nil {
		return err
	}

	// At most one CONFIRMED reservation per spot and date
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_confirmed_reservation_per_spot_date
		ON reservations (spot_id, reservation_date)
		WHERE status = 'CONFIRMED';
	`).Error
	if err != nil {
		return err
	}

	// Covering index for the expiry sweep
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_offers_pending_expires_at
		ON waitlist_offers (expires_at)
		WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
