package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gatiendev/auth-service/internal/config"
	httpHandler "github.com/gatiendev/auth-service/internal/handler/http"
	"github.com/gatiendev/auth-service/internal/infrastructure/database"
	infraPostgres "github.com/gatiendev/auth-service/internal/infrastructure/database/postgres"
	"github.com/gatiendev/auth-service/internal/infrastructure/security"
	"github.com/gatiendev/auth-service/internal/service"
	"github.com/gatiendev/auth-service/internal/utils/logger"
)

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations")
		m, err := migrate.New("file://"+cfg.Database.MigrationDir, cfg.Database.DSN())
		if err != nil {
			log.Fatal("failed to create migration instance", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	dbPool, err := infraPostgres.NewDBPool(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize postgres connection pool", zap.Error(err))
	}
	defer dbPool.Close()

	userRepo := database.NewPgxUserRepository(dbPool)
	refreshTokenRepo := database.NewPgxRefreshTokenRepository(dbPool)

	passwordService, err := security.NewArgon2idPasswordService(security.Argon2idParams{
		Memory:      cfg.Security.PasswordHash.Memory,
		Iterations:  cfg.Security.PasswordHash.Iterations,
		Parallelism: cfg.Security.PasswordHash.Parallelism,
		SaltLength:  cfg.Security.PasswordHash.SaltLength,
		KeyLength:   cfg.Security.PasswordHash.KeyLength,
	})
	if err != nil {
		log.Fatal("failed to initialize password service", zap.Error(err))
	}

	tokenService, err := security.NewJWTService(security.JWTConfig{
		Secret:                 cfg.JWT.Secret,
		AccessTokenTTL:         cfg.JWT.AccessTokenTTL,
		RefreshTokenByteLength: cfg.JWT.RefreshTokenByteLength,
	})
	if err != nil {
		log.Fatal("failed to initialize token service", zap.Error(err))
	}

	authService := service.NewAuthService(userRepo, refreshTokenRepo, passwordService, tokenService, cfg.JWT, log)

	var scheduler *cron.Cron
	if cfg.Security.TokenCleanupSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Security.TokenCleanupSchedule, func() {
			authService.PurgeExpiredTokens(context.Background())
		})
		if err != nil {
			log.Fatal("invalid token cleanup schedule", zap.Error(err))
		}
		scheduler.Start()
		log.Info("token cleanup scheduled", zap.String("schedule", cfg.Security.TokenCleanupSchedule))
	}

	router := httpHandler.SetupRouter(authService, cfg, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
