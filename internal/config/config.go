package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      int
	PublicURL string

	// Appwrite
	AppwriteEndpoint  string
	AppwriteProjectID string
	AppwriteAPIKey    string
	DatabaseID        string
	TodosTableID      string
	BackendTimeout    time.Duration

	// browser sessions
	SessionSecret string
	SessionTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTELEndpoint string

	AuthRateLimit int
	MaxBodyBytes  int64
}

func Load() Config {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	port := getEnvInt("PORT", 8080)

	return Config{
		Env:       getEnv("APP_ENV", "dev"),
		Port:      port,
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),

		AppwriteEndpoint:  strings.TrimRight(getEnv("APPWRITE_ENDPOINT", "https://fra.cloud.appwrite.io/v1"), "/"),
		AppwriteProjectID: getEnv("APPWRITE_PROJECT_ID", ""),
		AppwriteAPIKey:    getEnv("APPWRITE_API_KEY", ""),
		DatabaseID:        getEnv("APPWRITE_DATABASE_ID", "todos-database"),
		TodosTableID:      getEnv("APPWRITE_TODOS_TABLE_ID", "todos"),
		BackendTimeout:    time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 5000)) * time.Millisecond,

		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELEndpoint: getEnv("OTEL_ENDPOINT", ""),

		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),
		MaxBodyBytes:  int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	return c.Env == "prod"
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
