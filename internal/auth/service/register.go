package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/store"
	"github.com/tetgift/commerce/pkg/cryptox"
	"github.com/tetgift/commerce/pkg/idx"
	"github.com/tetgift/commerce/pkg/slogx"
)

// RegistrationService creates accounts. New users start unverified and
// receive an activation OTP, login stays blocked until it is confirmed.
type RegistrationService struct {
	Store store.Store
	Otp   *OtpService
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
}

func (s *RegistrationService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Pre-check both unique columns so the caller learns which one
	// collided. The insert below still races safely on the DB constraint.
	if _, err := s.Store.Users().GetUserByUsername(ctx, p.Username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}
	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	// 2. Hash the password
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	// 3. Insert the unverified account
	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		FullName:     p.FullName,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		Verified:     false,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	// 4. Kick off activation
	if err := s.Otp.Issue(ctx, user); err != nil {
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}
