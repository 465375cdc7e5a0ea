package domain

import "time"

// Role names stored against users. Kept as plain strings in token claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string // argon2 encoded
	Roles        []string
	Verified     bool // set once the signup OTP is confirmed
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
