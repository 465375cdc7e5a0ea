package store

import (
	"context"
	"errors"

	"github.com/tetgift/commerce/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the durable data access interface backed by the relational
// database. Concrete drivers (sqlite, postgres) implement this. Sub-repos
// are exposed as methods to keep concerns tidy and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail backs the forgot-password and OTP flows.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkVerified flips the verified flag once the signup OTP is confirmed.
	MarkVerified(ctx context.Context, userID string) error

	// DeleteUser removes the user row.
	DeleteUser(ctx context.Context, userID string) error
}

// Sessions tracks live refresh sessions in the expiring store. A session
// existing is what keeps its refresh token usable, deletion revokes it.
type Sessions interface {
	// PutSession writes the user's session, replacing any previous one, and
	// resets its TTL.
	PutSession(ctx context.Context, s domain.RefreshSession) error

	// GetSessionByUserID returns the user's live session or ErrNotFound once
	// it was deleted or expired out.
	GetSessionByUserID(ctx context.Context, userID string) (domain.RefreshSession, error)

	// DeleteSessionByUserID revokes the user's session. Deleting an absent
	// session is not an error.
	DeleteSessionByUserID(ctx context.Context, userID string) error
}

// OtpChallenges tracks pending one-time codes in the expiring store, keyed
// by email. A fresh put replaces whatever code was outstanding.
type OtpChallenges interface {
	PutChallenge(ctx context.Context, c domain.OtpChallenge) error

	// GetChallengeByEmail returns the pending challenge or ErrNotFound once
	// it was consumed or expired out.
	GetChallengeByEmail(ctx context.Context, email string) (domain.OtpChallenge, error)

	// DeleteChallengeByEmail consumes the challenge. Deleting an absent
	// challenge is not an error.
	DeleteChallengeByEmail(ctx context.Context, email string) error
}
