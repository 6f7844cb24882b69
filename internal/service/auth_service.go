package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatiendev/auth-service/internal/config"
	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/interfaces"
	"github.com/gatiendev/auth-service/internal/domain/models"
)

// AuthService orchestrates the credential lifecycle: registration, login,
// refresh token rotation, logout and profile lookup. It holds no mutable
// state of its own; all durable state lives in the repositories.
type AuthService struct {
	userRepo         interfaces.UserRepository
	refreshTokenRepo interfaces.RefreshTokenRepository
	passwordService  interfaces.PasswordService
	tokenService     interfaces.TokenService
	refreshTokenTTL  time.Duration
	logger           *zap.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	refreshTokenRepo interfaces.RefreshTokenRepository,
	passwordService interfaces.PasswordService,
	tokenService interfaces.TokenService,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordService:  passwordService,
		tokenService:     tokenService,
		refreshTokenTTL:  jwtCfg.RefreshTokenTTL,
		logger:           logger,
	}
}

// Register creates a new user. No tokens are issued; the client logs in
// separately. The pre-insert lookup only exists to fail fast with a
// friendly message; the storage constraint is what actually guarantees
// uniqueness under concurrency.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, domainErrors.ErrUsernameExists
	} else if !errors.Is(err, domainErrors.ErrUserNotFound) {
		s.logger.Error("registration lookup failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	passwordHash, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainErrors.ErrUsernameExists) {
			return nil, domainErrors.ErrUsernameExists
		}
		s.logger.Error("user insert failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and, on success, mints an access token and
// persists a new refresh token. An unknown username and a wrong password
// yield the identical error so the endpoint cannot be used to enumerate
// accounts. Cookies are only set by the transport layer after this returns,
// so a persistence failure never exposes a half-authenticated session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, nil, domainErrors.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, nil, domainErrors.ErrInternal
	}

	match, err := s.passwordService.CheckPasswordHash(req.Password, user.PasswordHash)
	if err != nil {
		// A malformed stored digest is a mismatch from the client's point of
		// view, but worth a server-side record.
		s.logger.Warn("stored password hash failed to parse",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, nil, domainErrors.ErrInvalidCredentials
	}
	if !match {
		return nil, nil, domainErrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID, func(raw string) error {
		_, createErr := s.refreshTokenRepo.Create(ctx, user.ID, raw, s.refreshTokenTTL)
		return createErr
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}

// Refresh consumes the presented refresh token and issues a fresh pair.
// Rotation is single-use: the old row is deleted and a new one inserted in
// one transaction, so the presented token never validates twice.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*models.TokenPair, error) {
	stored, err := s.refreshTokenRepo.FindByRawToken(ctx, rawRefreshToken)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidRefreshToken) {
			return nil, domainErrors.ErrInvalidRefreshToken
		}
		s.logger.Error("refresh token lookup failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	pair, err := s.issueTokens(ctx, stored.UserID, func(raw string) error {
		_, rotateErr := s.refreshTokenRepo.Rotate(ctx, stored.UserID, rawRefreshToken, raw, s.refreshTokenTTL)
		return rotateErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session refreshed", zap.String("user_id", stored.UserID.String()))
	return pair, nil
}

// Logout deletes the presented refresh token. Deletion failures are logged
// rather than surfaced: the client-visible effect of logout is cleared
// cookies, and that happens regardless.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) {
	if err := s.refreshTokenRepo.DeleteByRawToken(ctx, rawRefreshToken); err != nil {
		s.logger.Warn("failed to delete refresh token on logout", zap.Error(err))
	}
}

// Profile validates an access token and returns the owning user.
func (s *AuthService) Profile(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrUnauthorized, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			// Valid token, vanished user: the account was removed after the
			// token was minted.
			return nil, domainErrors.ErrUserNotFound
		}
		s.logger.Error("profile lookup failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}
	return user, nil
}

// PurgeExpiredTokens removes refresh token rows whose expiry has passed.
// Queries already filter on expiry; this only keeps the table bounded.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("expired token purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("purged expired refresh tokens", zap.Int64("count", n))
	}
}

// issueTokens mints the access token first, then lets persist store the new
// refresh token. The order matters: if persistence fails, the minted access
// token is discarded with the error and no cookie is ever set.
func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID, persist func(raw string) error) (*models.TokenPair, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("access token signing failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	rawRefreshToken, err := s.tokenService.GenerateRefreshTokenValue()
	if err != nil {
		s.logger.Error("refresh token generation failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	if err := persist(rawRefreshToken); err != nil {
		s.logger.Error("refresh token persistence failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefreshToken,
	}, nil
}
