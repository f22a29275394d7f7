package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the downstream template to render
type NotificationType string

const (
	TypeOfferCreated       NotificationType = "PARKING_OFFER_CREATED"
	TypeOfferAccepted      NotificationType = "PARKING_OFFER_ACCEPTED"
	TypeOfferRejected      NotificationType = "PARKING_OFFER_REJECTED"
	TypeOfferExpired       NotificationType = "PARKING_OFFER_EXPIRED"
	TypeWaitlistRegistered NotificationType = "PARKING_WAITLIST_REGISTERED"
	TypeUserBlocked        NotificationType = "PARKING_WAITLIST_BLOCKED"
	TypeIncidentReassigned NotificationType = "PARKING_INCIDENT_REASSIGNED"
	TypeIncidentNoSpot     NotificationType = "PARKING_INCIDENT_NO_SPOT"
	TypeIncidentWarning    NotificationType = "PARKING_INCIDENT_WARNING"
)

// Notification is the fire-and-forget message published for downstream
// email/push delivery. Delivery itself is owned by the notification platform,
// not this service.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	Type      NotificationType       `json:"type"`
	UserID    uuid.UUID              `json:"user_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotification creates a notification addressed to one user
func NewNotification(t NotificationType, userID uuid.UUID, data map[string]interface{}) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Type:      t,
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// ToJSON serialises the notification for the wire
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// PartitionKey routes all of a user's notifications to one partition so
// downstream consumers see them in order
func (n *Notification) PartitionKey() string {
	return n.UserID.String()
}
