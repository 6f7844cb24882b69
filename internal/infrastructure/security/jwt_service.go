package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/interfaces"
)

// JWTConfig holds configuration for the JWT token service.
type JWTConfig struct {
	Secret                 string
	AccessTokenTTL         time.Duration
	RefreshTokenByteLength int
}

type jwtService struct {
	secret         []byte
	accessTokenTTL time.Duration
	refreshLength  int
	now            func() time.Time
}

// NewJWTService creates a TokenService signing access tokens with HS256.
func NewJWTService(cfg JWTConfig) (interfaces.TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must be configured")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	length := cfg.RefreshTokenByteLength
	if length <= 0 {
		length = 32
	}
	return &jwtService{
		secret:         []byte(cfg.Secret),
		accessTokenTTL: cfg.AccessTokenTTL,
		refreshLength:  length,
		now:            time.Now,
	}, nil
}

func (s *jwtService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domainErrors.ErrExpiredToken
		}
		// Bad signature, malformed structure and every other parse failure
		// collapse into one category: unauthenticated.
		return uuid.Nil, domainErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, domainErrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject claim", domainErrors.ErrInvalidToken)
	}
	return userID, nil
}

// GenerateRefreshTokenValue returns a base64url-encoded random value.
// Refresh tokens are opaque; their association with a user lives server-side
// keyed by the token's digest.
func (s *jwtService) GenerateRefreshTokenValue() (string, error) {
	b := make([]byte, s.refreshLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var _ interfaces.TokenService = (*jwtService)(nil)
