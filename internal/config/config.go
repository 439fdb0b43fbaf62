// Package config loads worker configuration from the environment. A .env
// file in the working directory is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every value the worker needs at startup.
type Config struct {
	// Store endpoints. The job queue, merchant tags and untagged merchants
	// live in three independent Redis databases.
	RedisURL         string
	TagsRedisURL     string
	UntaggedRedisURL string

	// Report document store.
	FirestoreProjectID string

	// Upstream card service.
	EcardBaseURL string
	EcardPassURL string

	// Worker loop.
	PollInterval time.Duration

	// Optional Gemini fallback for merchant classification.
	GeminiEnabled bool
	GeminiModel   string
}

// Load reads the configuration, applying defaults for local development.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		TagsRedisURL:     getEnv("TAGS_REDIS_URL", "redis://localhost:6379/1"),
		UntaggedRedisURL: getEnv("UNTAGGED_REDIS_URL", "redis://localhost:6379/2"),

		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),

		EcardBaseURL: getEnv("ECARD_BASE_URL", ""),
		EcardPassURL: getEnv("ECARD_PASS_URL", ""),

		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)) * time.Second,

		GeminiEnabled: getEnvBool("GEMINI_ENABLED", false),
		GeminiModel:   getEnv("GEMINI_MODEL", ""),
	}, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
