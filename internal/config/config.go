package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

const (
	StoreDriverMongo  = "mongodb"
	StoreDriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Log          LogConfig
	Server       ServerConfig
	Store        StoreConfig
	MongoDB      MongoDBConfig
	SMTP         SMTPConfig
	Mail         MailConfig
	Admin        AdminConfig
	Verification VerificationConfig
	Sheets       SheetsConfig
	Reporting    ReportingConfig
	Company      models.CompanyInfo
}

// LogConfig selects the service name stamped on every entry and the minimum level.
type LogConfig struct {
	Service string
	Level   string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port          string
	PublicBaseURL string
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SMTPConfig contains the transport used by the email dispatch endpoint.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

// MailConfig points the notifier at the email dispatch endpoint.
type MailConfig struct {
	APIURL  string
	Timeout time.Duration
}

// AdminConfig holds the operator credentials and session token settings.
type AdminConfig struct {
	Email           string
	PasswordHash    string
	JWTSecret       string
	ExpirationHours int
	Issuer          string
}

// VerificationConfig tunes the email verification flow.
type VerificationConfig struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	// SessionTTL bounds how long an idle viewer session is remembered.
	SessionTTL time.Duration
}

// SheetsConfig contains configuration required to append to the approval ledger.
// The ledger is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the approval ledger is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	StaleAfter   time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	port := getenvWithDefault("APP_PORT", "8080")

	smtpPort, err := getenvInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}

	expirationHours, err := getenvInt("JWT_EXPIRATION_HOURS", 12)
	if err != nil {
		return nil, err
	}

	sessionHours, err := getenvInt("VIEWER_SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Log: LogConfig{
			Service: getenvWithDefault("SERVICE_NAME", "offerte"),
			Level:   strings.ToLower(getenvWithDefault("LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Port:          port,
			PublicBaseURL: strings.TrimSuffix(getenvWithDefault("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreDriverMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "offerte"),
		},
		SMTP: SMTPConfig{
			Host:     getenvWithDefault("SMTP_HOST", "mail.privateemail.com"),
			Port:     smtpPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			FromName: getenvWithDefault("SMTP_FROM_NAME", "TechSolutionsUtrecht"),
		},
		Mail: MailConfig{
			APIURL:  getenvWithDefault("MAIL_API_URL", "http://localhost:"+port+"/api/send-email"),
			Timeout: 30 * time.Second,
		},
		Admin: AdminConfig{
			Email:           os.Getenv("ADMIN_EMAIL"),
			PasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:       os.Getenv("JWT_SECRET"),
			ExpirationHours: expirationHours,
			Issuer:          getenvWithDefault("JWT_ISSUER", "offerte"),
		},
		Verification: VerificationConfig{
			CodeTTL:        10 * time.Minute,
			ResendCooldown: 60 * time.Second,
			SessionTTL:     time.Duration(sessionHours) * time.Hour,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 8 * * 1"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Amsterdam"),
			StaleAfter:   7 * 24 * time.Hour,
		},
		Company: models.CompanyInfo{
			Name:    getenvWithDefault("COMPANY_NAME", "TechSolutionsUtrecht"),
			Website: getenvWithDefault("COMPANY_WEBSITE", "https://www.techsolutionsutrecht.nl/"),
			Phone:   getenvWithDefault("COMPANY_PHONE", "+31 623434286"),
			Kvk:     getenvWithDefault("COMPANY_KVK", "99202301"),
			VatID:   getenvWithDefault("COMPANY_VAT_ID", "NL005375937B46"),
			Email:   getenvWithDefault("COMPANY_EMAIL", "info@techsolutionsutrecht.nl"),
			Address: getenvWithDefault("COMPANY_ADDRESS", "H Akhgari / St.-ludgerusstraat 199 / 3553 CW Utrecht"),
			IBAN:    getenvWithDefault("COMPANY_IBAN", "NL61 INGB 0116 4234 63"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if c.Verification.SessionTTL <= 0 {
		return errors.New("VIEWER_SESSION_TTL_HOURS must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch {
	case c.SMTP.User == "":
		return errors.New("SMTP_USER must be provided")
	case c.SMTP.Password == "":
		return errors.New("SMTP_PASS must be provided")
	case c.SMTP.Port <= 0:
		return errors.New("SMTP_PORT must be positive")
	}

	if c.Mail.APIURL == "" {
		return errors.New("MAIL_API_URL must not be empty")
	}

	switch {
	case c.Admin.Email == "":
		return errors.New("ADMIN_EMAIL must be provided")
	case c.Admin.PasswordHash == "":
		return errors.New("ADMIN_PASSWORD_HASH must be provided")
	case len(c.Admin.JWTSecret) < 32:
		return errors.New("JWT_SECRET must be at least 32 characters")
	case c.Admin.ExpirationHours <= 0:
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Company.Email == "" {
		return errors.New("COMPANY_EMAIL must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
