package config

import (
	"os"
	"strconv"

	"go.uber.org/zap"
)

const (
	defaultHTTPPort     = 8080
	defaultMaxUploadMB  = 50
	defaultMaxTableRows = 500
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv         string
	HTTPPort       int
	DBDriver       string
	DBPath         string
	MaxUploadMB    int
	MaxTableRows   int
	SheetName      string
	RequestLogging bool
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		HTTPPort:       getEnvInt("HTTP_PORT", defaultHTTPPort),
		DBDriver:       getEnv("DB_DRIVER", "sqlite3"),
		DBPath:         getEnv("DB_PATH", "file:sla_session?mode=memory&cache=shared&_foreign_keys=on"),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB),
		MaxTableRows:   getEnvInt("MAX_TABLE_ROWS", defaultMaxTableRows),
		SheetName:      getEnv("SHEET_NAME", ""),
		RequestLogging: getEnvBool("REQUEST_LOGGING", true),
	}
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}
