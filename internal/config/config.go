package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	SMTP      SMTPConfig
	SheetSync SheetSyncConfig
	Storage   StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// SMTPConfig holds outbound mail configuration
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminInbox string
}

// SheetSyncConfig holds the best-effort external sheet write-back settings
type SheetSyncConfig struct {
	Enabled         bool
	SpreadsheetURL  string
	CredentialsFile string
	Timeout         time.Duration
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

func Load() (*Config, error) {
	// .env is optional outside development, required values are validated below
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "assistenz-timesheet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:       getEnv("SMTP_HOST", "localhost"),
		Port:       smtpPort,
		Username:   getEnv("SMTP_USERNAME", ""),
		Password:   getEnv("SMTP_PASSWORD", ""),
		From:       getEnv("SMTP_FROM", "noreply@assistenzwerk.de"),
		AdminInbox: getEnv("SMTP_ADMIN_INBOX", "verwaltung@assistenzwerk.de"),
	}

	// External sheet sync, best effort and may be disabled entirely
	syncTimeout, err := time.ParseDuration(getEnv("SHEET_SYNC_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEET_SYNC_TIMEOUT: %w", err)
	}
	config.SheetSync = SheetSyncConfig{
		Enabled:         getEnv("SHEET_SYNC_ENABLED", "false") == "true",
		SpreadsheetURL:  getEnv("SHEET_SYNC_SPREADSHEET_URL", ""),
		CredentialsFile: getEnv("SHEET_SYNC_CREDENTIALS_FILE", ""),
		Timeout:         syncTimeout,
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.SheetSync.Enabled {
		if c.SheetSync.SpreadsheetURL == "" {
			return fmt.Errorf("SHEET_SYNC_SPREADSHEET_URL is required when sheet sync is enabled")
		}
		if c.SheetSync.CredentialsFile == "" {
			return fmt.Errorf("SHEET_SYNC_CREDENTIALS_FILE is required when sheet sync is enabled")
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
