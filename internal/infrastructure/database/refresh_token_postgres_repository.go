package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/interfaces"
	"github.com/gatiendev/auth-service/internal/domain/models"
	"github.com/gatiendev/auth-service/internal/infrastructure/security"
)

type pgxRefreshTokenRepository struct {
	db *pgxpool.Pool
}

// NewPgxRefreshTokenRepository creates a RefreshTokenRepository backed by pgx.
func NewPgxRefreshTokenRepository(db *pgxpool.Pool) interfaces.RefreshTokenRepository {
	return &pgxRefreshTokenRepository{db: db}
}

func (r *pgxRefreshTokenRepository) Create(ctx context.Context, userID uuid.UUID, rawToken string, ttl time.Duration) (*models.RefreshToken, error) {
	token := newRefreshToken(userID, rawToken, ttl)

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return token, nil
}

func (r *pgxRefreshTokenRepository) FindByRawToken(ctx context.Context, rawToken string) (*models.RefreshToken, error) {
	// Expiry is enforced at query time; expired rows stay until the purge
	// job removes them but are never returned.
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > now()`
	token := &models.RefreshToken{}
	err := r.db.QueryRow(ctx, query, security.HashToken(rawToken)).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to find refresh token by hash: %w", err)
	}
	return token, nil
}

func (r *pgxRefreshTokenRepository) DeleteByRawToken(ctx context.Context, rawToken string) error {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`
	_, err := r.db.Exec(ctx, query, security.HashToken(rawToken))
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	// RowsAffected is deliberately not checked: deleting an already-gone
	// token is a no-op, which keeps logout idempotent.
	return nil
}

func (r *pgxRefreshTokenRepository) Rotate(ctx context.Context, userID uuid.UUID, oldRawToken, newRawToken string, ttl time.Duration) (*models.RefreshToken, error) {
	token := newRefreshToken(userID, newRawToken, ttl)

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, security.HashToken(oldRawToken)); err != nil {
			return fmt.Errorf("failed to delete consumed refresh token: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert replacement refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return token, nil
}

func (r *pgxRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

func newRefreshToken(userID uuid.UUID, rawToken string, ttl time.Duration) *models.RefreshToken {
	now := time.Now().UTC()
	return &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(rawToken),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

var _ interfaces.RefreshTokenRepository = (*pgxRefreshTokenRepository)(nil)
