package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/gatiendev/auth-service/internal/config"
	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/models"
	"github.com/gatiendev/auth-service/internal/service"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockUserRepo         *MockUserRepository
	mockRefreshTokenRepo *MockRefreshTokenRepository
	mockPasswordService  *MockPasswordService
	mockTokenService     *MockTokenService
	authService          *service.AuthService
	jwtCfg               config.JWTConfig
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.mockUserRepo = new(MockUserRepository)
	s.mockRefreshTokenRepo = new(MockRefreshTokenRepository)
	s.mockPasswordService = new(MockPasswordService)
	s.mockTokenService = new(MockTokenService)
	s.jwtCfg = config.JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	s.authService = service.NewAuthService(
		s.mockUserRepo,
		s.mockRefreshTokenRepo,
		s.mockPasswordService,
		s.mockTokenService,
		s.jwtCfg,
		zap.NewNop(),
	)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

// --- Register ---

func (s *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := models.RegisterRequest{Username: "alice", Password: "password123"}

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, domainErrors.ErrUserNotFound).Once()
	s.mockPasswordService.On("HashPassword", "password123").Return("$argon2id$...", nil).Once()
	s.mockUserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.PasswordHash == "$argon2id$..." && u.ID != uuid.Nil
	})).Return(nil).Once()

	user, err := s.authService.Register(ctx, req)

	s.NoError(err)
	s.Equal("alice", user.Username)
	s.mockUserRepo.AssertExpectations(s.T())
	s.mockPasswordService.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRegister_UsernameTaken() {
	ctx := context.Background()
	existing := &models.User{ID: uuid.New(), Username: "alice"}

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(existing, nil).Once()

	_, err := s.authService.Register(ctx, models.RegisterRequest{Username: "alice", Password: "anything1"})

	s.ErrorIs(err, domainErrors.ErrUsernameExists)
	s.mockPasswordService.AssertNotCalled(s.T(), "HashPassword", mock.Anything)
	s.mockUserRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestRegister_ConcurrentInsertLosesRace() {
	// The pre-check passes but the insert hits the unique constraint: the
	// storage-level conflict must still surface as a 409-class error.
	ctx := context.Background()

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, domainErrors.ErrUserNotFound).Once()
	s.mockPasswordService.On("HashPassword", "password123").Return("hash", nil).Once()
	s.mockUserRepo.On("Create", ctx, mock.Anything).Return(domainErrors.ErrUsernameExists).Once()

	_, err := s.authService.Register(ctx, models.RegisterRequest{Username: "alice", Password: "password123"})

	s.ErrorIs(err, domainErrors.ErrUsernameExists)
}

func (s *AuthServiceTestSuite) TestRegister_HashingFailure() {
	ctx := context.Background()

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, domainErrors.ErrUserNotFound).Once()
	s.mockPasswordService.On("HashPassword", "password123").Return("", errors.New("rng failure")).Once()

	_, err := s.authService.Register(ctx, models.RegisterRequest{Username: "alice", Password: "password123"})

	s.ErrorIs(err, domainErrors.ErrInternal)
	s.mockUserRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

// --- Login ---

func (s *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: "stored-hash"}

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
	s.mockPasswordService.On("CheckPasswordHash", "password123", "stored-hash").Return(true, nil).Once()
	s.mockTokenService.On("GenerateAccessToken", user.ID).Return("signed-access", nil).Once()
	s.mockTokenService.On("GenerateRefreshTokenValue").Return("raw-refresh", nil).Once()
	s.mockRefreshTokenRepo.On("Create", ctx, user.ID, "raw-refresh", s.jwtCfg.RefreshTokenTTL).
		Return(&models.RefreshToken{ID: uuid.New(), UserID: user.ID}, nil).Once()

	gotUser, pair, err := s.authService.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})

	s.NoError(err)
	s.Equal(user.ID, gotUser.ID)
	s.Equal("signed-access", pair.AccessToken)
	s.Equal("raw-refresh", pair.RefreshToken)
	s.mockRefreshTokenRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUserAndWrongPasswordAreIdentical() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: "stored-hash"}

	s.mockUserRepo.On("FindByUsername", ctx, "ghost").Return(nil, domainErrors.ErrUserNotFound).Once()
	_, _, errUnknown := s.authService.Login(ctx, models.LoginRequest{Username: "ghost", Password: "whatever1"})

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
	s.mockPasswordService.On("CheckPasswordHash", "wrongpass", "stored-hash").Return(false, nil).Once()
	_, _, errWrongPw := s.authService.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrongpass"})

	s.ErrorIs(errUnknown, domainErrors.ErrInvalidCredentials)
	s.ErrorIs(errWrongPw, domainErrors.ErrInvalidCredentials)
	s.Equal(errUnknown.Error(), errWrongPw.Error())
}

func (s *AuthServiceTestSuite) TestLogin_MalformedStoredHashIsMismatch() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: "garbage"}

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
	s.mockPasswordService.On("CheckPasswordHash", "password123", "garbage").
		Return(false, errors.New("invalid hash format")).Once()

	_, _, err := s.authService.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})

	s.ErrorIs(err, domainErrors.ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_PersistenceFailureAfterVerification() {
	// The password checked out and the tokens were minted, but the store is
	// down: the client must see a failure, never a half-authenticated state.
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: "stored-hash"}

	s.mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
	s.mockPasswordService.On("CheckPasswordHash", "password123", "stored-hash").Return(true, nil).Once()
	s.mockTokenService.On("GenerateAccessToken", user.ID).Return("signed-access", nil).Once()
	s.mockTokenService.On("GenerateRefreshTokenValue").Return("raw-refresh", nil).Once()
	s.mockRefreshTokenRepo.On("Create", ctx, user.ID, "raw-refresh", s.jwtCfg.RefreshTokenTTL).
		Return(nil, errors.New("connection refused")).Once()

	_, pair, err := s.authService.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})

	s.ErrorIs(err, domainErrors.ErrInternal)
	s.Nil(pair)
}

// --- Refresh ---

func (s *AuthServiceTestSuite) TestRefresh_RotatesToken() {
	ctx := context.Background()
	userID := uuid.New()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: userID, TokenHash: "digest"}

	s.mockRefreshTokenRepo.On("FindByRawToken", ctx, "old-raw").Return(stored, nil).Once()
	s.mockTokenService.On("GenerateAccessToken", userID).Return("new-access", nil).Once()
	s.mockTokenService.On("GenerateRefreshTokenValue").Return("new-raw", nil).Once()
	s.mockRefreshTokenRepo.On("Rotate", ctx, userID, "old-raw", "new-raw", s.jwtCfg.RefreshTokenTTL).
		Return(&models.RefreshToken{ID: uuid.New(), UserID: userID}, nil).Once()

	pair, err := s.authService.Refresh(ctx, "old-raw")

	s.NoError(err)
	s.Equal("new-access", pair.AccessToken)
	s.Equal("new-raw", pair.RefreshToken)
	s.mockRefreshTokenRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRefresh_UnknownOrExpiredToken() {
	ctx := context.Background()

	s.mockRefreshTokenRepo.On("FindByRawToken", ctx, "stale-raw").
		Return(nil, domainErrors.ErrInvalidRefreshToken).Once()

	_, err := s.authService.Refresh(ctx, "stale-raw")

	s.ErrorIs(err, domainErrors.ErrInvalidRefreshToken)
	s.mockTokenService.AssertNotCalled(s.T(), "GenerateAccessToken", mock.Anything)
}

func (s *AuthServiceTestSuite) TestRefresh_RotationFailure() {
	ctx := context.Background()
	userID := uuid.New()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: userID}

	s.mockRefreshTokenRepo.On("FindByRawToken", ctx, "old-raw").Return(stored, nil).Once()
	s.mockTokenService.On("GenerateAccessToken", userID).Return("new-access", nil).Once()
	s.mockTokenService.On("GenerateRefreshTokenValue").Return("new-raw", nil).Once()
	s.mockRefreshTokenRepo.On("Rotate", ctx, userID, "old-raw", "new-raw", s.jwtCfg.RefreshTokenTTL).
		Return(nil, errors.New("connection reset")).Once()

	_, err := s.authService.Refresh(ctx, "old-raw")

	s.ErrorIs(err, domainErrors.ErrInternal)
}

// --- Logout ---

func (s *AuthServiceTestSuite) TestLogout_DeleteFailureIsSwallowed() {
	ctx := context.Background()

	s.mockRefreshTokenRepo.On("DeleteByRawToken", ctx, "raw").Return(errors.New("store down")).Once()

	// Logout reports nothing; the transport clears cookies regardless.
	s.authService.Logout(ctx, "raw")
	s.mockRefreshTokenRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogout_Idempotent() {
	ctx := context.Background()

	s.mockRefreshTokenRepo.On("DeleteByRawToken", ctx, "consumed").Return(nil).Twice()

	s.authService.Logout(ctx, "consumed")
	s.authService.Logout(ctx, "consumed")
	s.mockRefreshTokenRepo.AssertExpectations(s.T())
}

// --- Profile ---

func (s *AuthServiceTestSuite) TestProfile_Success() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: "hash"}

	s.mockTokenService.On("ValidateAccessToken", "token").Return(user.ID, nil).Once()
	s.mockUserRepo.On("FindByID", ctx, user.ID).Return(user, nil).Once()

	got, err := s.authService.Profile(ctx, "token")

	s.NoError(err)
	s.Equal("alice", got.Username)
}

func (s *AuthServiceTestSuite) TestProfile_InvalidToken() {
	ctx := context.Background()

	s.mockTokenService.On("ValidateAccessToken", "bad-token").
		Return(uuid.Nil, domainErrors.ErrInvalidToken).Once()

	_, err := s.authService.Profile(ctx, "bad-token")

	s.True(domainErrors.IsUnauthorized(err))
	s.mockUserRepo.AssertNotCalled(s.T(), "FindByID", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestProfile_UserDeletedAfterTokenIssued() {
	ctx := context.Background()
	userID := uuid.New()

	s.mockTokenService.On("ValidateAccessToken", "token").Return(userID, nil).Once()
	s.mockUserRepo.On("FindByID", ctx, userID).Return(nil, domainErrors.ErrUserNotFound).Once()

	_, err := s.authService.Profile(ctx, "token")

	s.ErrorIs(err, domainErrors.ErrUserNotFound)
}

// --- Purge ---

func (s *AuthServiceTestSuite) TestPurgeExpiredTokens() {
	ctx := context.Background()

	s.mockRefreshTokenRepo.On("DeleteExpired", ctx).Return(int64(3), nil).Once()

	s.authService.PurgeExpiredTokens(ctx)
	s.mockRefreshTokenRepo.AssertExpectations(s.T())
}
