package model

import "time"

// UserState is the lifecycle state of a user account. Accounts start out
// pending and can only ever move to active.
type UserState string

const (
	// StatePending is the state assigned at registration.
	StatePending UserState = "pending"
	// StateActive marks an account that has been activated by an admin.
	StateActive UserState = "active"
)

// User represents a registered user.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"firstName" gorm:"size:255"`
	LastName     string    `json:"lastName" gorm:"size:255"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	State        UserState `json:"state" gorm:"size:20;not null;default:'pending'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
