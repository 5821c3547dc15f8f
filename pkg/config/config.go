package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Postgres
	DatabaseURL string

	// Redis (sync status + task list cache). Empty means in-memory fallback.
	RedisURL string

	// Google OAuth (Gmail access)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// AI provider: "gemini", "openai" or "auto"
	AIProvider   string
	GeminiApiKey string
	OpenAIApiKey string
	OpenAIModel  string

	// Firebase service account JSON path (push reminders, optional)
	FirebaseCredentials string

	// AES key for IMAP passwords at rest
	EncryptionKey string

	// Sync pipeline tuning
	SyncMaxEmails  int
	SyncStatusTTL  time.Duration
	SyncBatchPause time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	statusTTL := 10 * time.Minute
	if ttl := os.Getenv("SYNC_STATUS_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			statusTTL = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:     accessExpiry,
		JWTRefreshExpiry:    refreshExpiry,
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=prepmail port=5432 sslmode=disable"),
		RedisURL:            getEnv("REDIS_URL", ""),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback"),
		AIProvider:          getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:        getEnv("GEMINI_API_KEY", ""),
		OpenAIApiKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		SyncMaxEmails:       getEnvInt("SYNC_MAX_EMAILS", 20),
		SyncStatusTTL:       statusTTL,
		SyncBatchPause:      500 * time.Millisecond,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
