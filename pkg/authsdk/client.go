package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the commerce authentication service.
// It provides access to unauthenticated operations and can create
// authenticated Sessions through Login.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account. The account stays inactive until the
// emailed one-time code is confirmed via VerifyOtp.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", req, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// VerifyOtp confirms the signup code and activates the account.
func (c *SDKClient) VerifyOtp(ctx context.Context, email, otp string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{
		"email": email,
		"otp":   otp,
	}, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// ResendOtp invalidates any pending signup code and mails a fresh one.
func (c *SDKClient) ResendOtp(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/resend-otp", map[string]string{
		"email": email,
	}, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// Login authenticates with username and password and returns an
// authenticated Session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, err
	}

	return newSession(c, result), nil
}

// NewSessionFromTokens creates an authenticated session from existing
// tokens, e.g. a pair persisted by a previous login.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// ForgotPassword requests a password reset for the account. The service
// mails a reset link and also returns the reset token directly.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": email,
	}, nil)
	if err != nil {
		return "", err
	}

	var result ForgotPasswordResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return "", err
	}
	return result.ResetToken, nil
}

// ResetPassword sets a new password using the token from the reset link.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token":           token,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	}, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// Livez checks the liveness probe.
func (c *SDKClient) Livez(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readyz checks the readiness probe, including dependency health.
func (c *SDKClient) Readyz(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (HealthResponse, error) {
	var health HealthResponse

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return health, err
	}
	defer resp.Body.Close()

	// The probes return a bare HealthResponse, not the envelope, and a 503
	// body still describes which dependency failed.
	if err := decodeJSONBody(resp, &health); err != nil {
		return health, err
	}
	return health, nil
}
