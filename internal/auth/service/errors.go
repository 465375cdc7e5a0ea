package service

import "errors"

// Service errors use stable snake_case keys so handlers can surface them
// directly in response messages.
var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrAccountNotActivated  = errors.New("account_not_activated")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrUsernameTaken        = errors.New("username_taken")
	ErrEmailTaken           = errors.New("email_taken")
	ErrMissingRefreshToken  = errors.New("missing_refresh_token")
	ErrInvalidToken         = errors.New("invalid_token")
	ErrPasswordMismatch     = errors.New("password_mismatch")
	ErrIncorrectOldPassword = errors.New("incorrect_old_password")
	ErrInvalidOtp           = errors.New("invalid_otp")
	ErrOtpNotFound          = errors.New("otp_not_found")
)
