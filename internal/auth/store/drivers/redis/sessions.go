package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tetgift/commerce/internal/auth/domain"
	"github.com/tetgift/commerce/internal/auth/store"
)

// One session per user, so the key is the user id. Writing a new session
// overwrites the old one and its TTL in a single SET.
const sessionKeyPrefix = "refresh_session:"

type sessionsRepo struct {
	s *Store
}

func sessionKey(userID string) string { return sessionKeyPrefix + userID }

func (r *sessionsRepo) PutSession(ctx context.Context, sess domain.RefreshSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.s.rdb.Set(ctx, sessionKey(sess.UserID), payload, r.s.sessionTTL).Err()
}

func (r *sessionsRepo) GetSessionByUserID(ctx context.Context, userID string) (domain.RefreshSession, error) {
	payload, err := r.s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.RefreshSession{}, store.ErrNotFound
		}
		return domain.RefreshSession{}, err
	}

	var sess domain.RefreshSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return domain.RefreshSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (r *sessionsRepo) DeleteSessionByUserID(ctx context.Context, userID string) error {
	return r.s.rdb.Del(ctx, sessionKey(userID)).Err()
}
