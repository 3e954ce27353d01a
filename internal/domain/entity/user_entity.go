package entity

import (
	"time"
)

// User is the aggregate root for the credential domain.
// Passwords are stored as bcrypt hashes in Password field and Email is
// always kept lower-cased so lookups are case-insensitive.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
	UpdatedAt time.Time `json:"updated_at"`
}
