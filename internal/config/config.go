package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Log       LogConfig
	Local     LocalConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// LocalConfig holds Local Mirror Store configuration
type LocalConfig struct {
	Path string
}

// DatabaseConfig holds Remote System of Record configuration.
// Enabled=false runs the node entirely off the local mirror.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
	Alter    bool
}

// RedisConfig holds the optional cross-process invalidation channel
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// MinIOConfig holds the optional backup/archive bucket
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && getEnv("NODE_ENV", "development") == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3210"),
		JWTSecret: jwtSecret,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Local: LocalConfig{
			Path: getEnv("LOCAL_DB_PATH", "./data/mirror.db"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("REMOTE_ENABLED", os.Getenv("PG_HOST") != ""),
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "maintdesk"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "maintdesk:invalidate"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "maintdesk-backups"),
			UseSSL:    getBoolEnv("MINIO_USE_SSL", false),
		},
	}, nil
}

// Embedded reports whether the remote should be served by an embedded
// PostgreSQL process: localhost without a password.
func (c DatabaseConfig) Embedded() bool {
	return c.Host == "localhost" && c.Password == ""
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
