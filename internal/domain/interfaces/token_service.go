package interfaces

import "github.com/google/uuid"

// TokenService mints and validates signed access tokens and generates
// opaque refresh token values.
type TokenService interface {
	// GenerateAccessToken returns a signed, expiring token whose subject is
	// the given user id.
	GenerateAccessToken(userID uuid.UUID) (string, error)

	// ValidateAccessToken verifies signature and expiry and returns the
	// subject. Any failure category maps to a domain error; no partial trust.
	ValidateAccessToken(token string) (uuid.UUID, error)

	// GenerateRefreshTokenValue returns a new high-entropy opaque token.
	GenerateRefreshTokenValue() (string, error)
}
