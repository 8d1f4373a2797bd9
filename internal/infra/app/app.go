package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/database"
	kafkainfra "github.com/ThanhLong2006/personal-expense-tracker/internal/infra/kafka"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/mail"
	redisinfra "github.com/ThanhLong2006/personal-expense-tracker/internal/infra/redis"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/telemetry"
	postgresrepo "github.com/ThanhLong2006/personal-expense-tracker/internal/repository/postgres"
	redisrepo "github.com/ThanhLong2006/personal-expense-tracker/internal/repository/redis"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/transport/http/routes"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New wires configuration, infrastructure clients, repositories and services
// into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	cipher, err := buildSecretCipher(cfg.Crypto.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("init secret cipher: %w", err)
	}
	if cipher == nil {
		log.Warn("crypto.secret_key not set, 2fa secrets are stored unencrypted")
	}

	hasher, err := security.NewPasswordHasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	tokens, err := security.NewTokenService([]byte(cfg.JWT.SigningKey), cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}

	totp := security.NewTOTPVerifier(cfg.App.Name)
	passwordValidator := security.DefaultPasswordValidator()

	accounts := postgresrepo.NewAccountRepository(pool, cipher)

	prefix := cfg.Redis.KeyPrefix
	otpLedger := redisrepo.NewOtpLedger(redisClient.Client(), prefix+":otp")
	attemptStore := redisrepo.NewLoginAttemptStore(redisClient.Client(), prefix+":login_attempts")
	refreshSlots := redisrepo.NewTokenSlot(redisClient.Client(), prefix+":refresh")
	resetSlots := redisrepo.NewTokenSlot(redisClient.Client(), prefix+":reset")

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			producer = p
			eventPublisher = kafkainfra.NewEventPublisher(p, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	dispatcher := mail.NewLoggingDispatcher(log)

	lockout := usecase.NewLoginAttemptService(cfg.Login, attemptStore, accounts, eventPublisher, log).
		WithTelemetry(provider)
	registration := usecase.NewRegistrationService(cfg, accounts, otpLedger, hasher, passwordValidator, dispatcher, eventPublisher, log)
	auth := usecase.NewAuthService(cfg, accounts, refreshSlots, tokens, hasher, totp, lockout, eventPublisher, log)
	passwordReset := usecase.NewPasswordResetService(cfg, accounts, resetSlots, refreshSlots, tokens, hasher, passwordValidator, dispatcher, eventPublisher, log)
	twoFactor := usecase.NewTwoFactorService(accounts, totp, hasher, log)
	users := usecase.NewUserService(accounts)

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Tokens:    tokens,
		Telemetry: provider,
		Database:  pool,
		Cache:     redisClient,
		Services: routes.ServiceSet{
			Auth:          auth,
			Registration:  registration,
			PasswordReset: passwordReset,
			TwoFactor:     twoFactor,
			Users:         users,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// buildSecretCipher decodes the base64 column-encryption key. An empty key
// yields a nil cipher: the account repository then stores 2FA secrets as-is,
// which config.Validate forbids in production.
func buildSecretCipher(encoded string) (*security.SecretCipher, error) {
	if encoded == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode crypto.secret_key: %w", err)
	}

	return security.NewSecretCipher(key)
}

// Run serves HTTP traffic until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Error("close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting expense tracker API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
