package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	JWT      JWTSettings      `mapstructure:"jwt"`
	OTP      OTPSettings      `mapstructure:"otp"`
	Login    LoginSettings    `mapstructure:"login"`
	Argon2   Argon2Settings   `mapstructure:"argon2"`
	Crypto   CryptoSettings   `mapstructure:"crypto"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the Redis connection backing the TTL stores.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the auth event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// JWTSettings holds the shared signing key and per-kind token lifetimes.
type JWTSettings struct {
	SigningKey      string        `mapstructure:"signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	ResetTokenTTL   time.Duration `mapstructure:"reset_token_ttl"`
}

// OTPSettings configures activation codes. When Enabled is false the fixed
// SentinelCode is accepted instead of a generated code; production deploys
// must keep gating on, enforced by Validate.
type OTPSettings struct {
	Enabled      bool          `mapstructure:"enabled"`
	Length       int           `mapstructure:"length"`
	TTL          time.Duration `mapstructure:"ttl"`
	SentinelCode string        `mapstructure:"sentinel_code"`
}

// LoginSettings drives the brute-force lockout policy.
type LoginSettings struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	AttemptWindow     time.Duration `mapstructure:"attempt_window"`
	LockoutBase       time.Duration `mapstructure:"lockout_base"`
	LockoutMultiplier int           `mapstructure:"lockout_multiplier"`
}

// Argon2Settings configures Argon2id password hashing parameters.
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// CryptoSettings carries the key used to encrypt sensitive columns at rest.
type CryptoSettings struct {
	// SecretKey is the base64-encoded 32-byte AES-256 key for 2FA secrets.
	SecretKey string `mapstructure:"secret_key"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("EXPENSE")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"jwt.signing_key",
		"jwt.access_token_ttl",
		"jwt.refresh_token_ttl",
		"jwt.reset_token_ttl",
		"otp.enabled",
		"otp.length",
		"otp.ttl",
		"otp.sentinel_code",
		"login.max_attempts",
		"login.attempt_window",
		"login.lockout_base",
		"login.lockout_multiplier",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"crypto.secret_key",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces invariants that would otherwise surface as runtime
// security faults: key sizes and the production OTP gate.
func (c *AppConfig) Validate() error {
	if len(c.JWT.SigningKey) < 32 {
		return fmt.Errorf("jwt.signing_key must be at least 32 bytes, got %d", len(c.JWT.SigningKey))
	}

	if c.Crypto.SecretKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Crypto.SecretKey)
		if err != nil {
			return fmt.Errorf("crypto.secret_key must be valid base64: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("crypto.secret_key must decode to 32 bytes (AES-256), got %d", len(key))
		}
	}

	if c.App.Env == "production" {
		if !c.OTP.Enabled {
			return fmt.Errorf("otp gating must not be disabled in production")
		}
		if c.Crypto.SecretKey == "" {
			return fmt.Errorf("crypto.secret_key is required in production")
		}
	}

	if c.Login.MaxAttempts <= 0 {
		return fmt.Errorf("login.max_attempts must be positive")
	}
	if c.Login.LockoutMultiplier < 1 {
		return fmt.Errorf("login.lockout_multiplier must be at least 1")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "expense-tracker")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "expense")
	v.SetDefault("postgres.password", "expense_password")
	v.SetDefault("postgres.database", "expense")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "auth")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "expense")
	v.SetDefault("kafka.async", true)

	v.SetDefault("jwt.signing_key", "")
	v.SetDefault("jwt.access_token_ttl", "15m")
	v.SetDefault("jwt.refresh_token_ttl", "168h")
	v.SetDefault("jwt.reset_token_ttl", "15m")

	v.SetDefault("otp.enabled", true)
	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.ttl", "180s")
	v.SetDefault("otp.sentinel_code", "123456")

	v.SetDefault("login.max_attempts", 5)
	v.SetDefault("login.attempt_window", "1h")
	v.SetDefault("login.lockout_base", "120s")
	v.SetDefault("login.lockout_multiplier", 2)

	v.SetDefault("argon2.memory", 65536)
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("crypto.secret_key", "")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "EXPENSE_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
