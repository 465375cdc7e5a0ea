package authsdk

import "encoding/json"

// envelope is the generic response wrapper used by every endpoint.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// TokenPair is the access/refresh token pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the login payload: the token pair plus the user's profile.
type LoginResult struct {
	TokenPair
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName,omitempty"`
}

// ForgotPasswordResult carries the reset-purpose token minted for the
// account. The same token arrives by mail inside the reset link.
type ForgotPasswordResult struct {
	ResetToken string `json:"resetToken"`
}

// CheckoutResult carries the signed payment gateway redirect.
type CheckoutResult struct {
	PaymentURL string `json:"paymentUrl"`
}

// HealthResponse is the body of the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency state in the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
