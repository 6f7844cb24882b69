package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents the refresh_tokens table row. Only the SHA-256
// digest of the raw token is persisted; the raw value exists solely in the
// client's cookie.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
