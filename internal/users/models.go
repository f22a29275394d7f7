package users

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within the organisation
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// User represents an employee with parking access. Accounts are provisioned
// by the corporate SSO; this service never handles credentials.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName    string    `json:"first_name" gorm:"not null"`
	LastName     string    `json:"last_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	LicensePlate string    `json:"license_plate" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleManager), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// Priority returns the waitlist ordering rank for a role. Lower number sorts
// first when priority-by-role is enabled in the waitlist settings.
func (r Role) Priority() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleManager:
		return 2
	default:
		return 3
	}
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
