package jwtx

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTTL bounds how long a password reset token stays usable. It is not
// configurable.
const ResetTTL = 10 * time.Minute

var (
	ErrUnknownPurpose = errors.New("jwtx: unknown token purpose")
	ErrTokenExpired   = errors.New("jwtx: token expired")
	ErrInvalidToken   = errors.New("jwtx: invalid token")
)

// Verifier decodes a token minted for the given purpose.
type Verifier interface {
	Verify(p Purpose, raw string) (Claims, error)
}

// Config carries the per-purpose signing material. Secrets are standard
// base64 encoded strings, decoded once at construction.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies HS256 tokens, one independent secret per purpose.
type Codec struct {
	secrets map[Purpose][]byte
	ttls    map[Purpose]time.Duration
	now     func() time.Time
}

// NewCodec decodes the configured secrets and validates the TTLs.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("jwtx: access ttl must be positive")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwtx: refresh ttl must be positive")
	}

	secrets := make(map[Purpose][]byte, 3)
	for p, enc := range map[Purpose]string{
		TokenAccess:  cfg.AccessSecret,
		TokenRefresh: cfg.RefreshSecret,
		TokenReset:   cfg.ResetSecret,
	} {
		key, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("jwtx: decode %s secret: %w", p, err)
		}
		if len(key) == 0 {
			return nil, fmt.Errorf("jwtx: empty %s secret", p)
		}
		secrets[p] = key
	}

	// Purpose isolation rests on independent keys, sharing one defeats it.
	if bytes.Equal(secrets[TokenAccess], secrets[TokenRefresh]) ||
		bytes.Equal(secrets[TokenAccess], secrets[TokenReset]) ||
		bytes.Equal(secrets[TokenRefresh], secrets[TokenReset]) {
		return nil, errors.New("jwtx: purpose secrets must be distinct")
	}

	return &Codec{
		secrets: secrets,
		ttls: map[Purpose]time.Duration{
			TokenAccess:  cfg.AccessTTL,
			TokenRefresh: cfg.RefreshTTL,
			TokenReset:   ResetTTL,
		},
		now: time.Now,
	}, nil
}

// WithClock overrides the codec's time source. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// TTL returns the lifetime of tokens minted for the given purpose.
func (c *Codec) TTL(p Purpose) time.Duration {
	return c.ttls[p]
}

// Sign mints a token for the identity, scoped to the purpose's secret and
// lifetime.
func (c *Codec) Sign(p Purpose, id Identity) (string, error) {
	key, ok := c.secrets[p]
	if !ok {
		return "", ErrUnknownPurpose
	}

	now := c.now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Roles:    id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttls[p])),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", p, err)
	}
	return signed, nil
}

// Verify decodes raw against the purpose's secret. A token signed for a
// different purpose fails the signature check here, there is no shared key
// to fall back on.
func (c *Codec) Verify(p Purpose, raw string) (Claims, error) {
	key, ok := c.secrets[p]
	if !ok {
		return Claims{}, ErrUnknownPurpose
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}
