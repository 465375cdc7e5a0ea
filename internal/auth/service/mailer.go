package service

import "context"

// Mailer delivers transactional mail. Implementations live under
// internal/auth/mail.
type Mailer interface {
	// SendOtp delivers a one-time verification code.
	SendOtp(ctx context.Context, to, code string) error

	// SendPasswordReset delivers a reset link containing a short-lived token.
	SendPasswordReset(ctx context.Context, to, link string) error
}
