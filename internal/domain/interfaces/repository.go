package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatiendev/auth-service/internal/domain/models"
)

// UserRepository owns persisted user records.
type UserRepository interface {
	// Create inserts a new user. Username uniqueness is enforced by the
	// storage constraint; a violation surfaces as ErrUsernameExists.
	Create(ctx context.Context, user *models.User) error

	// FindByUsername returns ErrUserNotFound when no row matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByID returns ErrUserNotFound when no row matches.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RefreshTokenRepository owns persisted refresh token records, indexed by
// the digest of the raw token value.
type RefreshTokenRepository interface {
	// Create hashes rawToken and inserts a row expiring at now + ttl.
	Create(ctx context.Context, userID uuid.UUID, rawToken string, ttl time.Duration) (*models.RefreshToken, error)

	// FindByRawToken hashes rawToken and looks up a non-expired row.
	// Expired-but-present rows are reported as ErrInvalidRefreshToken.
	FindByRawToken(ctx context.Context, rawToken string) (*models.RefreshToken, error)

	// DeleteByRawToken hashes rawToken and deletes matching rows. Deleting
	// zero rows is not an error.
	DeleteByRawToken(ctx context.Context, rawToken string) error

	// Rotate atomically deletes the row matching oldRawToken and inserts a
	// new row for newRawToken within one transaction.
	Rotate(ctx context.Context, userID uuid.UUID, oldRawToken, newRawToken string, ttl time.Duration) (*models.RefreshToken, error)

	// DeleteExpired removes rows whose expiry has passed and reports how
	// many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
