package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// refreshTokenHeader carries the refresh token for the refresh and logout
// endpoints.
const refreshTokenHeader = "x-refresh-token"

// Session represents an authenticated session. When a request comes back
// 401 the session refreshes its access token once and retries, so callers
// never see expiry of a still-valid session.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// newSession creates an authenticated session from a login result.
func newSession(client *SDKClient, result LoginResult) *Session {
	return &Session{
		client:       client,
		accessToken:  result.AccessToken,
		refreshToken: result.RefreshToken,
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Refresh exchanges the refresh token for a fresh access token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh-token", nil,
		map[string]string{refreshTokenHeader: refreshToken})
	if err != nil {
		return err
	}

	var pair TokenPair
	if err := decodeEnvelope(resp, &pair); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.mu.Unlock()
	return nil
}

// Logout revokes the session server-side. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil,
		map[string]string{refreshTokenHeader: refreshToken})
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// ChangePassword rotates the account password. The server revokes the
// refresh session on success, so the caller must log in again.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"oldPassword":     oldPassword,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	})
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, nil)
}

// CheckoutURL asks the service for a signed payment gateway redirect.
func (s *Session) CheckoutURL(ctx context.Context, paymentID string, amount float64) (CheckoutResult, error) {
	var result CheckoutResult

	path := "/api/v1/payments/checkout-url?paymentId=" + paymentID +
		"&amount=" + strconv.FormatFloat(amount, 'f', -1, 64)

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return result, err
	}
	if err := decodeEnvelope(resp, &result); err != nil {
		return result, err
	}
	return result, nil
}

// doAuthRequest performs an authenticated request. On a 401 it refreshes
// the access token once and retries, draining the first response so the
// connection can be reused.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	resp, err := s.client.doRequest(ctx, method, path, body, s.authHeader())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return s.client.doRequest(ctx, method, path, body, s.authHeader())
}

func (s *Session) authHeader() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{"Authorization": "Bearer " + s.accessToken}
}
