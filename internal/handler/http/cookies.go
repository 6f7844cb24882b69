package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatiendev/auth-service/internal/domain/models"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// cookieWriter sets and clears the auth cookies. Both are HttpOnly and
// Secure, scoped to the whole application; max ages track the token TTLs.
type cookieWriter struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func newCookieWriter(accessTokenTTL, refreshTokenTTL time.Duration) cookieWriter {
	return cookieWriter{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (w cookieWriter) setAuthCookies(c *gin.Context, pair *models.TokenPair) {
	w.write(c, accessTokenCookie, pair.AccessToken, int(w.accessTokenTTL.Seconds()))
	w.write(c, refreshTokenCookie, pair.RefreshToken, int(w.refreshTokenTTL.Seconds()))
}

func (w cookieWriter) clearAuthCookies(c *gin.Context) {
	w.write(c, accessTokenCookie, "", -1)
	w.write(c, refreshTokenCookie, "", -1)
}

func (w cookieWriter) write(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
