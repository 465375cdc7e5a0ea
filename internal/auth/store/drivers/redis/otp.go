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

const otpKeyPrefix = "otp:"

type otpRepo struct {
	s *Store
}

func otpKey(email string) string { return otpKeyPrefix + email }

func (r *otpRepo) PutChallenge(ctx context.Context, c domain.OtpChallenge) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal otp challenge: %w", err)
	}
	return r.s.rdb.Set(ctx, otpKey(c.Email), payload, r.s.otpTTL).Err()
}

func (r *otpRepo) GetChallengeByEmail(ctx context.Context, email string) (domain.OtpChallenge, error) {
	payload, err := r.s.rdb.Get(ctx, otpKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OtpChallenge{}, store.ErrNotFound
		}
		return domain.OtpChallenge{}, err
	}

	var c domain.OtpChallenge
	if err := json.Unmarshal(payload, &c); err != nil {
		return domain.OtpChallenge{}, fmt.Errorf("unmarshal otp challenge: %w", err)
	}
	return c, nil
}

func (r *otpRepo) DeleteChallengeByEmail(ctx context.Context, email string) error {
	return r.s.rdb.Del(ctx, otpKey(email)).Err()
}
