package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/joho/godotenv"
)

const (
	DefaultSourceOrigin = "https://indiankanoon.org"
	DefaultAttribution  = "Source: Indian Kanoon (indiankanoon.org)"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	CaseLaw  CaseLawConfig
	LogLevel string
}

type ServerConfig struct {
	Port             string
	AllowedOrigins   string
	BodyLimit        int
	MaxMessageLength int
	// PendingRetention bounds how long undelivered realtime frames are kept.
	PendingRetention time.Duration
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig points at an S3-compatible bucket. Snapshots are disabled
// when Endpoint is empty.
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func (s StorageConfig) Enabled() bool {
	return s.Endpoint != ""
}

type JWTConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type CaseLawConfig struct {
	ProviderURL  string
	ProviderKey  string
	SourceOrigin string
	Attribution  string
	SuggestURL   string
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// Load reads .env (if any) and the process environment. JWT_SECRET is the only
// required variable.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnvOrDefault("PORT", "8080"),
			AllowedOrigins:   os.Getenv("ALLOWED_ORIGINS"),
			BodyLimit:        getIntOrDefault("BODY_LIMIT", 2*1024*1024),
			MaxMessageLength: getIntOrDefault("MAX_MESSAGE_LENGTH", 4000),
			PendingRetention: getDurationOrDefault("PENDING_RETENTION", 7*24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvOrDefault("DB_NAME", "firmconnect"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     []byte(secret),
			AccessTTL:  getDurationOrDefault("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: getDurationOrDefault("JWT_REFRESH_TTL", 30*24*time.Hour),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    os.Getenv("S3_REGION"),
			Bucket:    getEnvOrDefault("S3_BUCKET", "caselaw-snapshots"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			UseSSL:    getBoolOrDefault("S3_USE_SSL", false),
		},
		CaseLaw: CaseLawConfig{
			ProviderURL:  strings.TrimRight(getEnvOrDefault("CASELAW_PROVIDER_URL", "http://localhost:8090"), "/"),
			ProviderKey:  os.Getenv("CASELAW_PROVIDER_KEY"),
			SourceOrigin: strings.TrimRight(getEnvOrDefault("CASELAW_SOURCE_ORIGIN", DefaultSourceOrigin), "/"),
			Attribution:  getEnvOrDefault("CASELAW_ATTRIBUTION", DefaultAttribution),
			SuggestURL:   strings.TrimRight(os.Getenv("CASELAW_SUGGEST_URL"), "/"),
			CacheTTL:     getDurationOrDefault("CASELAW_CACHE_TTL", 30*time.Minute),
			Timeout:      getDurationOrDefault("CASELAW_TIMEOUT", 15*time.Second),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("Invalid integer for %s (%q), using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("Invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warn("Invalid boolean for %s (%q), using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}
