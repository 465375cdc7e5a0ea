package domain

import "time"

// TokenPair is what a successful login or refresh returns, the short-lived
// access token and the longer-lived refresh token, both JWTs.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult pairs the minted tokens with the authenticated user's public
// profile for the login response body.
type LoginResult struct {
	TokenPair
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}

// RefreshSession is the stored record that keeps a refresh token live.
// Deleting it revokes the token regardless of the JWT's own expiry, and a
// user holds at most one session at a time.
type RefreshSession struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	RefreshToken string    `json:"refreshToken"`
	CreatedAt    time.Time `json:"createdAt"`
}
