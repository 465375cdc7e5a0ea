// Package redis implements the expiring stores (refresh sessions, pending
// one-time codes) on Redis. Expiry is passive, records are written with a
// TTL and simply stop resolving once it lapses.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tetgift/commerce/internal/auth/store"
)

// Default lifetimes for the expiring records.
const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	DefaultOtpTTL     = 5 * time.Minute
)

type Config struct {
	Addr     string
	Password string
	DB       int

	// SessionTTL and OtpTTL fall back to the defaults when zero.
	SessionTTL time.Duration
	OtpTTL     time.Duration
}

type Store struct {
	rdb        *redis.Client
	sessionTTL time.Duration
	otpTTL     time.Duration
}

func NewStore(cfg Config) *Store {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.OtpTTL <= 0 {
		cfg.OtpTTL = DefaultOtpTTL
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Store{
		rdb:        rdb,
		sessionTTL: cfg.SessionTTL,
		otpTTL:     cfg.OtpTTL,
	}
}

func (s *Store) Close() error { return s.rdb.Close() }

// Ping verifies the Redis connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Sessions() store.Sessions           { return &sessionsRepo{s} }
func (s *Store) OtpChallenges() store.OtpChallenges { return &otpRepo{s} }
