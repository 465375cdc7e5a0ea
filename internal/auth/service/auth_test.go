package service_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/service"
	"github.com/tetgift/commerce/internal/auth/store"
	redisstore "github.com/tetgift/commerce/internal/auth/store/drivers/redis"
	"github.com/tetgift/commerce/internal/auth/store/drivers/sqlite"
	"github.com/tetgift/commerce/pkg/jwtx"
)

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	otps   []sentOtp
	resets []sentReset
}

type sentOtp struct{ to, code string }
type sentReset struct{ to, link string }

func (m *fakeMailer) SendOtp(_ context.Context, to, code string) error {
	m.otps = append(m.otps, sentOtp{to, code})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.resets = append(m.resets, sentReset{to, link})
	return nil
}

func (m *fakeMailer) lastOtp(t *testing.T) sentOtp {
	t.Helper()
	require.NotEmpty(t, m.otps, "expected an otp mail")
	return m.otps[len(m.otps)-1]
}

type env struct {
	auth     *service.AuthenticationService
	otp      *service.OtpService
	register *service.RegistrationService
	codec    *jwtx.Codec
	db       store.Store
	sessions store.Sessions
	mailer   *fakeMailer
	redis    *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	mr := miniredis.RunT(t)
	rs := redisstore.NewStore(redisstore.Config{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rs.Close() })

	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	codec, err := jwtx.NewCodec(jwtx.Config{
		AccessSecret:  enc("access-secret-for-tests-0123456789"),
		RefreshSecret: enc("refresh-secret-for-tests-0123456789"),
		ResetSecret:   enc("reset-secret-for-tests-0123456789"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	mailer := &fakeMailer{}

	otp := &service.OtpService{
		Store:      db,
		Challenges: rs.OtpChallenges(),
		Mailer:     mailer,
	}

	return &env{
		auth: &service.AuthenticationService{
			Codec:    codec,
			Store:    db,
			Sessions: rs.Sessions(),
			Mailer:   mailer,
			ResetURL: "https://shop.example.com/reset-password",
		},
		otp:      otp,
		register: &service.RegistrationService{Store: db, Otp: otp},
		codec:    codec,
		db:       db,
		sessions: rs.Sessions(),
		mailer:   mailer,
		redis:    mr,
	}
}

// registerVerified registers a user and completes OTP verification so login
// works.
func registerVerified(t *testing.T, e *env) domain.User {
	t.Helper()
	ctx := context.Background()

	user, err := e.register.Register(ctx, service.RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "S3cret-password",
		FullName: "Alice Nguyen",
	})
	require.NoError(t, err)

	code := e.mailer.lastOtp(t).code
	require.NoError(t, e.otp.Verify(ctx, user.Email, code))
	return user
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := registerVerified(t, e)

	t.Run("success round-trips identity through the access token", func(t *testing.T) {
		res, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)
		require.Equal(t, user.ID, res.UserID)
		require.Equal(t, "alice", res.Username)
		require.Equal(t, []string{domain.RoleUser}, res.Roles)

		claims, err := e.codec.Verify(jwtx.TokenAccess, res.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, []string{domain.RoleUser}, claims.Roles)
	})

	t.Run("email works in place of the username", func(t *testing.T) {
		res, err := e.auth.Login(ctx, "alice@example.com", "S3cret-password")
		require.NoError(t, err)
		require.Equal(t, "alice", res.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown user reports the same error as a bad password", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "nobody", "whatever")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unverified account", func(t *testing.T) {
		_, err := e.register.Register(ctx, service.RegisterParams{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "S3cret-password",
		})
		require.NoError(t, err)

		_, err = e.auth.Login(ctx, "bob", "S3cret-password")
		require.ErrorIs(t, err, service.ErrAccountNotActivated)
	})
}

func TestRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := registerVerified(t, e)

	login, err := e.auth.Login(ctx, "alice", "S3cret-password")
	require.NoError(t, err)

	t.Run("mints a new access token and keeps the refresh token", func(t *testing.T) {
		pair, err := e.auth.Refresh(ctx, login.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, login.RefreshToken, pair.RefreshToken, "refresh tokens are not rotated")

		claims, err := e.codec.Verify(jwtx.TokenAccess, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := e.auth.Refresh(ctx, "")
		require.ErrorIs(t, err, service.ErrMissingRefreshToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := e.auth.Refresh(ctx, "not.a.jwt")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("access token is not accepted as a refresh token", func(t *testing.T) {
		_, err := e.auth.Refresh(ctx, login.AccessToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("a second login supersedes the first session", func(t *testing.T) {
		relogin, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)

		_, err = e.auth.Refresh(ctx, login.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken, "old refresh token must be superseded")

		_, err = e.auth.Refresh(ctx, relogin.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("session expiry revokes a cryptographically valid token", func(t *testing.T) {
		login, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)

		e.redis.FastForward(7*24*time.Hour + time.Second)

		_, err = e.auth.Refresh(ctx, login.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	registerVerified(t, e)

	login, err := e.auth.Login(ctx, "alice", "S3cret-password")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		require.ErrorIs(t, e.auth.Logout(ctx, ""), service.ErrMissingRefreshToken)
	})

	t.Run("revokes the session", func(t *testing.T) {
		require.NoError(t, e.auth.Logout(ctx, login.RefreshToken))

		// The token is still cryptographically valid but its session is gone.
		_, err := e.auth.Refresh(ctx, login.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("logout twice fails", func(t *testing.T) {
		require.ErrorIs(t, e.auth.Logout(ctx, login.RefreshToken), service.ErrInvalidToken)
	})
}

func TestForgotAndResetPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	registerVerified(t, e)

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.auth.ForgotPassword(ctx, "nobody@example.com")
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("unactivated account", func(t *testing.T) {
		_, err := e.register.Register(ctx, service.RegisterParams{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "S3cret-password",
		})
		require.NoError(t, err)

		_, err = e.auth.ForgotPassword(ctx, "carol@example.com")
		require.ErrorIs(t, err, service.ErrAccountNotActivated)
	})

	token, err := e.auth.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token, "caller receives the reset token directly")

	// The mailed link embeds the same token.
	require.NotEmpty(t, e.mailer.resets)
	link := e.mailer.resets[len(e.mailer.resets)-1].link
	require.Equal(t, "https://shop.example.com/reset-password?token="+token, link)

	t.Run("mismatch is checked before the token", func(t *testing.T) {
		err := e.auth.ResetPassword(ctx, "garbage-token", "new-password", "different")
		require.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("mismatch with a valid token", func(t *testing.T) {
		err := e.auth.ResetPassword(ctx, token, "new-password", "different")
		require.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("garbage token", func(t *testing.T) {
		err := e.auth.ResetPassword(ctx, "garbage-token", "new-password", "new-password")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("access token is not accepted as a reset token", func(t *testing.T) {
		login, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)

		err = e.auth.ResetPassword(ctx, login.AccessToken, "new-password", "new-password")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("reset rotates the password and revokes the session", func(t *testing.T) {
		login, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)

		require.NoError(t, e.auth.ResetPassword(ctx, token, "Brand-new-pass", "Brand-new-pass"))

		_, err = e.auth.Login(ctx, "alice", "S3cret-password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = e.auth.Refresh(ctx, login.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken, "reset must revoke live sessions")

		_, err = e.auth.Login(ctx, "alice", "Brand-new-pass")
		require.NoError(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	registerVerified(t, e)

	t.Run("unknown principal", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, "nobody", "old", "new", "new")
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("wrong old password", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, "alice", "wrong", "new-password", "new-password")
		require.ErrorIs(t, err, service.ErrIncorrectOldPassword)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, "alice", "S3cret-password", "new-password", "different")
		require.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("success rotates the password and revokes the session", func(t *testing.T) {
		login, err := e.auth.Login(ctx, "alice", "S3cret-password")
		require.NoError(t, err)

		require.NoError(t, e.auth.ChangePassword(ctx, "alice", "S3cret-password", "Fresh-password", "Fresh-password"))

		_, err = e.auth.Refresh(ctx, login.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)

		_, err = e.auth.Login(ctx, "alice", "Fresh-password")
		require.NoError(t, err)
	})
}
