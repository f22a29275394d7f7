package parking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSpotNotFound  = errors.New("parking spot not found")
	ErrGroupNotFound = errors.New("parking group not found")
)

// ParkingGroup represents a permission group of spots (e.g. a garage level or
// a fenced lot). Which users may see a group is enforced by storage row-level
// security, not by this service.
type ParkingGroup struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Priority    int       `json:"priority" gorm:"not null;default:0;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ParkingSpot represents a numbered spot within a group
type ParkingSpot struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GroupID   uuid.UUID `json:"group_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_spot_number"`
	Number    string    `json:"number" gorm:"not null;uniqueIndex:idx_group_spot_number"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
