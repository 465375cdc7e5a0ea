package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to a single use. Each purpose signs with its own
// secret, so a token minted for one purpose never verifies under another.
type Purpose string

const (
	TokenAccess  Purpose = "access"
	TokenRefresh Purpose = "refresh"
	TokenReset   Purpose = "reset_password"
)

// Identity is the principal a token is minted for.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// Claims is the decoded token payload. The subject carries the username,
// matching what API clients display, while UserID keys server-side lookups.
type Claims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`

	jwt.RegisteredClaims
}

// Identity reconstructs the principal from decoded claims.
func (c Claims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Roles:    c.Roles,
	}
}
