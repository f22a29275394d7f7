package database

import (
	"parkwise/internal/audit"
	"parkwise/internal/incidents"
	"parkwise/internal/parking"
	"parkwise/internal/reservations"
	"parkwise/internal/users"
	"parkwise/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.User{},
		&parking.ParkingGroup{},
		&parking.ParkingSpot{},
		&reservations.Reservation{},
		&waitlist.WaitlistEntry{},
		&waitlist.WaitlistOffer{},
		&waitlist.WaitlistPenalty{},
		&waitlist.WaitlistSettings{},
		&incidents.Incident{},
		&audit.AuditLog{},
	)
	if err != nil {
		return err
	}

	if err := MigrateConstraints(db); err != nil {
		return err
	}

	// The settings singleton must exist before the first request reads it
	return db.Where(waitlist.WaitlistSettings{ID: waitlist.SettingsRowID}).
		Attrs(*waitlist.DefaultSettings()).
		FirstOrCreate(&waitlist.WaitlistSettings{}).Error
}
