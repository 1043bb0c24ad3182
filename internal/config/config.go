package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record store backends
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	// Record store
	StoreBackend    string
	EnquiryTable    string
	SupabaseURL     string
	SupabaseAnonKey string
	DatabaseURL     string
	SQLitePath      string

	// Submission guard
	RedisURL        string
	FormTokenSecret string
	FormTokenTTL    time.Duration
	SubmitLockTTL   time.Duration

	// Calendar day boundaries for "today"
	SiteTimezone string

	// Staff alerts, both optional
	TelegramBotToken string
	TelegramChatID   int64
	AMQPURL          string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	chatID, err := getInt64Env("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "production"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", BackendSupabase)),
		EnquiryTable:     getEnv("ENQUIRY_TABLE", "space_enquiries"),
		SupabaseURL:      strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:  getEnv("SUPABASE_ANON_KEY", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "enquiries.db"),
		RedisURL:         getEnv("REDIS_URL", ""),
		FormTokenSecret:  getEnv("FORM_TOKEN_SECRET", ""),
		FormTokenTTL:     getDurationEnv("FORM_TOKEN_TTL", 2*time.Hour),
		SubmitLockTTL:    getDurationEnv("SUBMIT_LOCK_TTL", 30*time.Second),
		SiteTimezone:     getEnv("SITE_TIMEZONE", "Asia/Kolkata"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   chatID,
		AMQPURL:          getEnv("AMQP_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend and optional integrations are complete
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("STORE_BACKEND=supabase requires SUPABASE_URL and SUPABASE_ANON_KEY")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("STORE_BACKEND=sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.EnquiryTable == "" {
		return fmt.Errorf("ENQUIRY_TABLE cannot be empty")
	}
	if c.FormTokenSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("FORM_TOKEN_SECRET is required outside development")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is set but TELEGRAM_CHAT_ID is missing")
	}
	if _, err := time.LoadLocation(c.SiteTimezone); err != nil {
		return fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.SiteTimezone, err)
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// Location returns the site time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
