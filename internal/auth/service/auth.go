package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/store"
	"github.com/tetgift/commerce/pkg/cryptox"
	"github.com/tetgift/commerce/pkg/jwtx"
	"github.com/tetgift/commerce/pkg/slogx"
)

// AuthenticationService owns the credential flows: login, refresh, logout
// and the three password paths (forgot, reset, change).
type AuthenticationService struct {
	Codec    *jwtx.Codec
	Store    store.Store
	Sessions store.Sessions
	Mailer   Mailer

	// ResetURL is the frontend page a reset link points at, the token is
	// appended as a query parameter.
	ResetURL string
}

// Login verifies the credentials and mints a fresh token pair. The account
// is addressed by username or email. The stored refresh session is replaced,
// so a second login supersedes the first device's refresh token.
func (s *AuthenticationService) Login(ctx context.Context, usernameOrEmail, password string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Look the user up, by username first then by email. A missing user
	// reports the same error as a bad password so the endpoint doesn't
	// confirm which accounts exist.
	user, err := s.Store.Users().GetUserByUsername(ctx, usernameOrEmail)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.Store.Users().GetUserByEmail(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, ErrInvalidCredentials
		}
		return domain.LoginResult{}, err
	}

	// 2. Check the password
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login rejected", slog.String("username", user.Username))
		return domain.LoginResult{}, ErrInvalidCredentials
	}

	// 3. Unverified accounts can't log in until their signup OTP is confirmed
	if !user.Verified {
		return domain.LoginResult{}, ErrAccountNotActivated
	}

	// 4. Mint the pair
	pair, err := s.mintPair(user)
	if err != nil {
		return domain.LoginResult{}, err
	}

	// 5. Record the refresh session, replacing whatever was there
	err = s.Sessions.PutSession(ctx, domain.RefreshSession{
		UserID:       user.ID,
		Username:     user.Username,
		RefreshToken: pair.RefreshToken,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))

	return domain.LoginResult{
		TokenPair: pair,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     user.Roles,
	}, nil
}

// Refresh trades a live refresh token for a new access token. The refresh
// token itself is not rotated, it stays valid until its session is deleted
// or expires. Revocation is decided by the stored session, not by the JWT:
// a cryptographically valid token whose session is gone is rejected.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	// 1. Require a token
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.TokenPair{}, ErrMissingRefreshToken
	}

	// 2. Decode against the refresh secret
	claims, err := s.Codec.Verify(jwtx.TokenRefresh, refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	// 3. The subject must still resolve to a live account
	if _, err := s.Store.Users().GetUserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		return domain.TokenPair{}, err
	}

	// 4. The session must still exist and must hold this exact token,
	// otherwise a newer login has superseded it
	sess, err := s.Sessions.GetSessionByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, err
	}
	if subtle.ConstantTimeCompare([]byte(sess.RefreshToken), []byte(refreshToken)) != 1 {
		l.Info("refresh token superseded", slog.String("user_id", claims.UserID))
		return domain.TokenPair{}, ErrInvalidToken
	}

	// 5. Mint a new access token for the same identity
	access, err := s.Codec.Sign(jwtx.TokenAccess, claims.Identity())
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the presented refresh token by deleting its session.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	l := slogx.FromContext(ctx)

	// 1. Require a token
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrMissingRefreshToken
	}

	// 2. Decode against the refresh secret
	claims, err := s.Codec.Verify(jwtx.TokenRefresh, refreshToken)
	if err != nil {
		return ErrInvalidToken
	}

	// 3. Only the session's current token can revoke it
	sess, err := s.Sessions.GetSessionByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(sess.RefreshToken), []byte(refreshToken)) != 1 {
		return ErrInvalidToken
	}

	// 4. Delete the session, the refresh token dies with it
	if err := s.Sessions.DeleteSessionByUserID(ctx, claims.UserID); err != nil {
		return err
	}

	l.Info("logout", slog.String("user_id", claims.UserID))
	return nil
}

// ForgotPassword mints a reset-purpose token for the account, mails a reset
// link embedding it, and returns the token to the caller.
func (s *AuthenticationService) ForgotPassword(ctx context.Context, email string) (string, error) {
	l := slogx.FromContext(ctx)

	// 1. Resolve the account
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	// 2. Only activated accounts can request a reset
	if !user.Verified {
		return "", ErrAccountNotActivated
	}

	// 3. Mint a reset token scoped to its own secret and TTL
	token, err := s.Codec.Sign(jwtx.TokenReset, jwtx.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
	})
	if err != nil {
		return "", err
	}

	// 4. Mail the link
	link := s.ResetURL + "?token=" + token
	if err := s.Mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		l.Warn("reset mail failed", slog.String("user_id", user.ID), slog.Any("err", err))
		return "", err
	}

	l.Info("reset mail sent", slog.String("user_id", user.ID))
	return token, nil
}

// ResetPassword sets a new password from a reset-purpose token. The
// confirmation check runs before token validation so a typo never burns a
// one-shot link.
func (s *AuthenticationService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	l := slogx.FromContext(ctx)

	// 1. Confirmation first
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	// 2. Decode against the reset secret
	claims, err := s.Codec.Verify(jwtx.TokenReset, token)
	if err != nil {
		return ErrInvalidToken
	}

	// 3. Re-check the confirmation with the token validated
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	// 4. Rehash and store
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 5. Revoke any live refresh session, old devices must log in again
	if err := s.Sessions.DeleteSessionByUserID(ctx, claims.UserID); err != nil {
		return err
	}

	l.Info("password reset", slog.String("user_id", claims.UserID))
	return nil
}

// ChangePassword rotates the password of the authenticated principal.
func (s *AuthenticationService) ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirmPassword string) error {
	l := slogx.FromContext(ctx)

	// 1. Resolve the principal
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 2. The current password must check out
	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrIncorrectOldPassword
	}

	// 3. Confirmation
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	// 4. Rehash and store
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	// 5. Revoke the refresh session so stale devices re-authenticate
	if err := s.Sessions.DeleteSessionByUserID(ctx, user.ID); err != nil {
		return err
	}

	l.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// mintPair signs an access and refresh token for the user.
func (s *AuthenticationService) mintPair(user domain.User) (domain.TokenPair, error) {
	id := jwtx.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
	}

	access, err := s.Codec.Sign(jwtx.TokenAccess, id)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.Sign(jwtx.TokenRefresh, id)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
