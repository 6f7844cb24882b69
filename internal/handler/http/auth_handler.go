package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatiendev/auth-service/internal/config"
	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/models"
	"github.com/gatiendev/auth-service/internal/service"
	"github.com/gatiendev/auth-service/internal/utils/metrics"
)

// AuthHandler exposes the auth lifecycle over HTTP. All token transport
// happens through cookies; response bodies never contain token values.
type AuthHandler struct {
	authService *service.AuthService
	cookies     cookieWriter
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, jwtCfg config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     newCookieWriter(jwtCfg.AccessTokenTTL, jwtCfg.RefreshTokenTTL),
		logger:      logger,
	}
}

func badRequestError(err error, message string) *domainErrors.AppError {
	return domainErrors.NewAppError(
		fmt.Errorf("%w: %v", domainErrors.ErrInvalidRequest, err),
		message, http.StatusBadRequest, "invalid_request",
	)
}

func missingCookieError(message string) *domainErrors.AppError {
	return domainErrors.NewAppError(domainErrors.ErrUnauthorized, message, http.StatusUnauthorized, "unauthenticated")
}

// RegisterUser handles POST /register. Registration does not log the user
// in; a separate login call is required.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, badRequestError(err, "Invalid request payload"), h.logger)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if domainErrors.IsConflict(err) {
			RespondWithError(c, domainErrors.NewAppError(err, "Username already taken", http.StatusConflict, "username_taken"), h.logger)
		} else {
			RespondWithError(c, domainErrors.NewAppError(err, "Registration failed", http.StatusInternalServerError, "internal_error"), h.logger)
		}
		return
	}

	RespondWithData(c, http.StatusCreated, models.RegisterResponse{UserID: user.ID})
}

// LoginUser handles POST /login. On success both auth cookies are set.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, badRequestError(err, "Invalid request payload"), h.logger)
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if domainErrors.IsUnauthorized(err) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			// One message for unknown username and wrong password alike.
			RespondWithError(c, domainErrors.NewAppError(err, "Invalid username or password", http.StatusUnauthorized, "invalid_credentials"), h.logger)
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
			RespondWithError(c, domainErrors.NewAppError(err, "Login failed", http.StatusInternalServerError, "internal_error"), h.logger)
		}
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	h.cookies.setAuthCookies(c, pair)
	RespondWithData(c, http.StatusOK, gin.H{"user": user.ToResponse()})
}

// RefreshToken handles POST /refresh. The presented refresh token is
// consumed and replaced; the old value never validates again.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	rawToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || rawToken == "" {
		RespondWithError(c, missingCookieError("Missing refresh token"), h.logger)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), rawToken)
	if err != nil {
		if domainErrors.IsUnauthorized(err) {
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			RespondWithError(c, domainErrors.NewAppError(err, "Invalid or expired refresh token", http.StatusUnauthorized, "invalid_refresh_token"), h.logger)
		} else {
			metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
			RespondWithError(c, domainErrors.NewAppError(err, "Refresh failed", http.StatusInternalServerError, "internal_error"), h.logger)
		}
		return
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	h.cookies.setAuthCookies(c, pair)
	RespondWithMessage(c, http.StatusOK, "Tokens refreshed")
}

// LogoutUser handles POST /logout. Store deletion is best-effort; cookies
// are cleared regardless, and repeating the call with an already-consumed
// token succeeds the same way.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	rawToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || rawToken == "" {
		RespondWithError(c, missingCookieError("Missing refresh token"), h.logger)
		return
	}

	h.authService.Logout(c.Request.Context(), rawToken)
	h.cookies.clearAuthCookies(c)
	RespondWithMessage(c, http.StatusOK, "Logged out")
}

// Profile handles GET /profile, authenticated by the access token cookie.
func (h *AuthHandler) Profile(c *gin.Context) {
	accessToken, err := c.Cookie(accessTokenCookie)
	if err != nil || accessToken == "" {
		RespondWithError(c, missingCookieError("Missing access token"), h.logger)
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), accessToken)
	if err != nil {
		switch {
		case domainErrors.IsUnauthorized(err):
			RespondWithError(c, domainErrors.NewAppError(err, "Invalid or expired access token", http.StatusUnauthorized, "unauthenticated"), h.logger)
		case domainErrors.IsNotFound(err):
			RespondWithError(c, domainErrors.NewAppError(err, "User not found", http.StatusNotFound, "user_not_found"), h.logger)
		default:
			RespondWithError(c, domainErrors.NewAppError(err, "Profile lookup failed", http.StatusInternalServerError, "internal_error"), h.logger)
		}
		return
	}

	RespondWithData(c, http.StatusOK, user.ToResponse())
}
