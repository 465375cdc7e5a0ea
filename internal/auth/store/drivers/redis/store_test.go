package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s := NewStore(Config{
		Addr:       mr.Addr(),
		SessionTTL: 7 * 24 * time.Hour,
		OtpTTL:     5 * time.Minute,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSessionsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.RefreshSession{
		UserID:       "user-1",
		Username:     "alice",
		RefreshToken: "token-abc",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Sessions().PutSession(ctx, sess))

	got, err := s.Sessions().GetSessionByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, sess, got)
}

func TestSessionsMissing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Sessions().GetSessionByUserID(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsOnePerUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := domain.RefreshSession{UserID: "user-1", Username: "alice", RefreshToken: "old"}
	second := domain.RefreshSession{UserID: "user-1", Username: "alice", RefreshToken: "new"}

	require.NoError(t, s.Sessions().PutSession(ctx, first))
	require.NoError(t, s.Sessions().PutSession(ctx, second))

	got, err := s.Sessions().GetSessionByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "new", got.RefreshToken, "a new login supersedes the previous session")
}

func TestSessionsDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.RefreshSession{UserID: "user-1", RefreshToken: "token"}
	require.NoError(t, s.Sessions().PutSession(ctx, sess))
	require.NoError(t, s.Sessions().DeleteSessionByUserID(ctx, "user-1"))

	_, err := s.Sessions().GetSessionByUserID(ctx, "user-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting twice is not an error.
	require.NoError(t, s.Sessions().DeleteSessionByUserID(ctx, "user-1"))
}

func TestSessionsExpire(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	sess := domain.RefreshSession{UserID: "user-1", RefreshToken: "token"}
	require.NoError(t, s.Sessions().PutSession(ctx, sess))

	mr.FastForward(7*24*time.Hour + time.Second)

	_, err := s.Sessions().GetSessionByUserID(ctx, "user-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsPutResetsTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	sess := domain.RefreshSession{UserID: "user-1", RefreshToken: "token"}
	require.NoError(t, s.Sessions().PutSession(ctx, sess))

	// Halfway through the window a rewrite should start the clock over.
	mr.FastForward(4 * 24 * time.Hour)
	require.NoError(t, s.Sessions().PutSession(ctx, sess))
	mr.FastForward(4 * 24 * time.Hour)

	_, err := s.Sessions().GetSessionByUserID(ctx, "user-1")
	require.NoError(t, err)
}

func TestOtpChallengesRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c := domain.OtpChallenge{Email: "alice@example.com", UserID: "user-1", Code: "042137"}
	require.NoError(t, s.OtpChallenges().PutChallenge(ctx, c))

	got, err := s.OtpChallenges().GetChallengeByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestOtpChallengesReplaceAndDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.OtpChallenges().PutChallenge(ctx, domain.OtpChallenge{
		Email: "alice@example.com", UserID: "user-1", Code: "111111",
	}))
	require.NoError(t, s.OtpChallenges().PutChallenge(ctx, domain.OtpChallenge{
		Email: "alice@example.com", UserID: "user-1", Code: "222222",
	}))

	got, err := s.OtpChallenges().GetChallengeByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "222222", got.Code, "a fresh code replaces the outstanding one")

	require.NoError(t, s.OtpChallenges().DeleteChallengeByEmail(ctx, "alice@example.com"))
	_, err = s.OtpChallenges().GetChallengeByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOtpChallengesExpire(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.OtpChallenges().PutChallenge(ctx, domain.OtpChallenge{
		Email: "alice@example.com", UserID: "user-1", Code: "042137",
	}))

	mr.FastForward(5*time.Minute + time.Second)

	_, err := s.OtpChallenges().GetChallengeByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
