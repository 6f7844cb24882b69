package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
)

// ResponseError is the error body shape for every failure response.
type ResponseError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondWithError sends appErr's stable client-facing message and code; the
// wrapped internal detail goes only to the server-side log. Client-caused
// failures log at warn, everything else at error.
func RespondWithError(c *gin.Context, appErr *domainErrors.AppError, fallback *zap.Logger) {
	log := requestLogger(c, fallback)
	fields := []zap.Field{
		zap.Int("status_code", appErr.StatusCode),
		zap.String("error_code", appErr.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(appErr),
	}
	if clientFault(appErr) {
		log.Warn("API error response", fields...)
	} else {
		log.Error("API error response", fields...)
	}

	c.JSON(appErr.StatusCode, ResponseError{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}

func clientFault(err error) bool {
	return domainErrors.IsBadRequest(err) ||
		domainErrors.IsUnauthorized(err) ||
		domainErrors.IsConflict(err) ||
		domainErrors.IsNotFound(err)
}

// requestLogger returns the logger the logging middleware attached to the
// context, so error entries carry the request id. The fallback covers
// engines without the middleware.
func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}

// RespondWithData sends a success response carrying only data.
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondWithMessage sends a success response carrying only a message.
func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
