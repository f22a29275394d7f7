package audit

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSONMap represents a JSON map type that can be stored in the database
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for database retrieval
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// GormDataType tells GORM how to handle this type
func (JSONMap) GormDataType() string {
	return "jsonb"
}

// Audit action names, one per recorded state transition
const (
	ActionWaitlistRegistered     = "waitlist.registered"
	ActionWaitlistEntryCancelled = "waitlist.entry_cancelled"
	ActionOfferCreated           = "waitlist.offer_created"
	ActionOfferAccepted          = "waitlist.offer_accepted"
	ActionOfferRejected          = "waitlist.offer_rejected"
	ActionOfferExpired           = "waitlist.offer_expired"
	ActionUserBlocked            = "waitlist.user_blocked"
	ActionUserUnblocked          = "waitlist.user_unblocked"
	ActionSettingsUpdated        = "waitlist.settings_updated"
	ActionReservationCreated     = "reservation.created"
	ActionReservationCancelled   = "reservation.cancelled"
	ActionIncidentReported       = "incident.reported"
	ActionIncidentReassigned     = "incident.reassigned"
	ActionIncidentNoSpot         = "incident.no_spot_available"
	ActionIncidentConfirmed      = "incident.confirmed"
	ActionIncidentDismissed      = "incident.dismissed"
)

// AuditLog is an append-only record of a state transition. Rows are never
// updated or deleted.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Action     string     `json:"action" gorm:"type:varchar(60);not null;index"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	EntityType string     `json:"entity_type" gorm:"type:varchar(40)"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" gorm:"type:uuid;index"`
	Details    JSONMap    `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}
