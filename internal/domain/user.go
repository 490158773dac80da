package domain

import "time"

// Validation bounds for user fields.
const (
	UsernameMinLen = 3
	PasswordMinLen = 6
)

// User represents a registered shop user. PasswordHash holds the bcrypt hash
// of the password and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
