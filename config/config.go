package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultRingValidityWindow  = 180 * time.Second
	DefaultSessionTokenTTL     = time.Hour
	DefaultAPILogRetentionDays = 30
)

// Config holds the project config values
type Config struct {
	URL                 string
	DatabaseName        string
	BaseURL             string
	Port                string
	JWTSecret           string
	SendgridAPIKey      string
	ExpoPushURL         string
	RingValidityWindow  time.Duration
	SessionTokenTTL     time.Duration
	APILogRetentionDays int
}

// New sets up all config related services
func New() *Config {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err == nil {
		defer logger.Sync()
		_ = zap.ReplaceGlobals(logger)
	}

	return &Config{
		URL:                 os.Getenv("DB_URI"),
		DatabaseName:        os.Getenv("DB_NAME"),
		BaseURL:             os.Getenv("BASE_URL"),
		Port:                os.Getenv("PORT"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SendgridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		ExpoPushURL:         os.Getenv("EXPO_PUSH_URL"),
		RingValidityWindow:  envSeconds("RING_VALIDITY_WINDOW", DefaultRingValidityWindow),
		SessionTokenTTL:     envSeconds("SESSION_TOKEN_TTL", DefaultSessionTokenTTL),
		APILogRetentionDays: envInt("API_LOG_RETENTION_DAYS", DefaultAPILogRetentionDays),
	}
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		zap.S().Warnw("invalid duration value, using default",
			"key", key,
			"value", v,
		)
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		zap.S().Warnw("invalid integer value, using default",
			"key", key,
			"value", v,
		)
		return fallback
	}
	return n
}

// ErrorStatus logs the underlying error and writes the shared error
// envelope with the given message and status code.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
