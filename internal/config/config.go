package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Mail     MailConfig
	Uploads  UploadConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret            string
	AccessTokenTTLDays   int
	ResetTokenTTLHours   int
	BcryptCost           int
	AdminDefaultPassword string
}

// PaymentConfig points at the external payment provider.
type PaymentConfig struct {
	BaseURL          string
	APIToken         string
	TimeoutSeconds   int
	SuccessRedirect  string
	FailureRedirect  string
	WebhookSharedKey string
}

// MailConfig holds the outbound email collaborator settings.
type MailConfig struct {
	From         string
	ResetBaseURL string
}

// UploadConfig controls image upload storage.
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
	PublicPrefix string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "commerce-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLDays:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_DAYS", 7),
			ResetTokenTTLHours:   getEnvAsInt("AUTH_RESET_TOKEN_TTL_HOURS", 2),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 10),
			AdminDefaultPassword: getEnv("AUTH_ADMIN_DEFAULT_PASSWORD", "1234abcd"),
		},
		Payment: PaymentConfig{
			BaseURL:          getEnv("PAYMENT_PROVIDER_URL", "https://api.vexorpay.com"),
			APIToken:         os.Getenv("PAYMENT_PROVIDER_TOKEN"),
			TimeoutSeconds:   getEnvAsInt("PAYMENT_PROVIDER_TIMEOUT_SECONDS", 15),
			SuccessRedirect:  getEnv("PAYMENT_SUCCESS_REDIRECT", ""),
			FailureRedirect:  getEnv("PAYMENT_FAILURE_REDIRECT", ""),
			WebhookSharedKey: os.Getenv("PAYMENT_WEBHOOK_SHARED_KEY"),
		},
		Mail: MailConfig{
			From:         getEnv("MAIL_FROM", "noreply@example.com"),
			ResetBaseURL: getEnv("MAIL_RESET_BASE_URL", "http://localhost:8080/reset-password"),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "assets/img"),
			MaxSizeBytes: int64(getEnvAsInt("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024)),
			PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/assets/img"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the credential validity window.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	days := a.AccessTokenTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// ResetTokenTTL returns the password reset token validity window.
func (a AuthConfig) ResetTokenTTL() time.Duration {
	hours := a.ResetTokenTTLHours
	if hours <= 0 {
		hours = 2
	}
	return time.Duration(hours) * time.Hour
}

// Timeout returns the provider call timeout.
func (p PaymentConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
