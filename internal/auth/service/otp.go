package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/store"
	"github.com/tetgift/commerce/pkg/cryptox"
	"github.com/tetgift/commerce/pkg/slogx"
)

// OtpService issues and checks the one-time codes that gate account
// activation. Codes live in the expiring store keyed by email, one
// outstanding code per address.
type OtpService struct {
	Store      store.Store
	Challenges store.OtpChallenges
	Mailer     Mailer
}

// Issue generates a fresh code for the user, stores it with the challenge
// TTL and mails it out. Any outstanding code for the address is replaced.
func (s *OtpService) Issue(ctx context.Context, user domain.User) error {
	l := slogx.FromContext(ctx)

	// 1. Draw a code
	code, err := cryptox.GenerateOTP()
	if err != nil {
		return err
	}

	// 2. Store it, overwriting any previous challenge for this email
	err = s.Challenges.PutChallenge(ctx, domain.OtpChallenge{
		Email:  user.Email,
		UserID: user.ID,
		Code:   code,
	})
	if err != nil {
		return err
	}

	// 3. Mail it
	if err := s.Mailer.SendOtp(ctx, user.Email, code); err != nil {
		l.Warn("otp mail failed", slog.String("user_id", user.ID), slog.Any("err", err))
		return err
	}

	l.Info("otp issued", slog.String("user_id", user.ID))
	return nil
}

// Verify checks a submitted code and, on success, consumes the challenge
// and activates the account. A wrong code leaves the challenge in place so
// the user can retry until it expires.
func (s *OtpService) Verify(ctx context.Context, email, code string) error {
	l := slogx.FromContext(ctx)

	// 1. There must be an outstanding challenge
	challenge, err := s.Challenges.GetChallengeByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOtpNotFound
		}
		return err
	}

	// 2. Compare codes
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		return ErrInvalidOtp
	}

	// 3. Consume the challenge, a code verifies at most once
	if err := s.Challenges.DeleteChallengeByEmail(ctx, email); err != nil {
		return err
	}

	// 4. Activate the account
	if err := s.Store.Users().MarkVerified(ctx, challenge.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	l.Info("otp verified", slog.String("user_id", challenge.UserID))
	return nil
}

// Resend invalidates whatever code is outstanding for the email and issues
// a fresh one.
func (s *OtpService) Resend(ctx context.Context, email string) error {
	// 1. The address must belong to an account
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 2. Drop the old challenge before issuing, the previous code must not
	// stay usable alongside the new one
	if err := s.Challenges.DeleteChallengeByEmail(ctx, email); err != nil {
		return err
	}

	// 3. Issue a fresh code
	return s.Issue(ctx, user)
}
