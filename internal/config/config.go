package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	Database DatabaseConfig
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryUploadFolder string

	JWTSecret string
	JWTTTL    time.Duration

	RateLimitGlobal  time.Duration
	RateLimitListing time.Duration

	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=%d",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, int(d.ConnectTimeout.Seconds()),
	)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "tradesphere"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "tradesphere"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
	}

	var err error
	if cfg.Database.MaxOpenConns, err = parseInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = parseInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.RetryAttempts, err = parseInt("DB_RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", "30m", &cfg.Database.ConnMaxLifetime},
		{"DB_CONNECT_TIMEOUT", "5s", &cfg.Database.ConnectTimeout},
		{"DB_RETRY_BASE_DELAY", "1s", &cfg.Database.RetryBaseDelay},
		{"JWT_TTL", "720h", &cfg.JWTTTL},
		{"RATE_LIMIT_GLOBAL", "5s", &cfg.RateLimitGlobal},
		{"RATE_LIMIT_LISTING", "30s", &cfg.RateLimitListing},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		*d.target, err = parseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if cfg.IsProduction() && cfg.JWTSecret == "change-me" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
