package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gatiendev/auth-service/internal/config"
	"github.com/gatiendev/auth-service/internal/handler/http/middleware"
	"github.com/gatiendev/auth-service/internal/service"
)

// SetupRouter wires middleware and routes onto a fresh gin engine.
func SetupRouter(authService *service.AuthService, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CorsMiddleware())
	router.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))
	if cfg.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(authService, cfg.JWT, logger)

	router.POST("/register", authHandler.RegisterUser)
	router.POST("/login", authHandler.LoginUser)
	router.POST("/logout", authHandler.LogoutUser)
	router.POST("/refresh", authHandler.RefreshToken)
	router.GET("/profile", authHandler.Profile)

	return router
}
