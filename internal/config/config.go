package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env         string
	Port        string
	CORSOrigins []string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Identity verification
	AuthJWTSecret     string
	AuthPublicKeyPath string
	AuthAudience      string
	AuthIssuer        string

	// AI generator
	GeminiAPIKey    string
	GeminiModel     string
	AITimeout       time.Duration
	AIRatePerMinute int

	// Currency rates
	FXAPIKey     string
	FXAPIBaseURL string
	FXTimeout    time.Duration
	FXCacheTTL   time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "urwallet"),
		DBPassword: getEnv("DB_PASSWORD", "urwallet"),
		DBName:     getEnv("DB_NAME", "urwallet"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "urwallet.db"),

		// Identity verification
		AuthJWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
		AuthPublicKeyPath: getEnv("AUTH_JWT_PUBLIC_KEY", ""),
		AuthAudience:      getEnv("AUTH_AUDIENCE", ""),
		AuthIssuer:        getEnv("AUTH_ISSUER", ""),

		// AI generator
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:       getDuration("AI_TIMEOUT", 15*time.Second),
		AIRatePerMinute: getInt("AI_RATE_PER_MINUTE", 20),

		// Currency rates
		FXAPIKey:     getEnv("FX_API_KEY", ""),
		FXAPIBaseURL: getEnv("FX_API_BASE_URL", "https://v6.exchangerate-api.com/v6"),
		FXTimeout:    getDuration("FX_TIMEOUT", 10*time.Second),
		FXCacheTTL:   getDuration("FX_CACHE_TTL", time.Hour),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
