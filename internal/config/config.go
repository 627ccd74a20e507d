package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Auth engine configuration
	EngineBaseURL        string        `json:"engine_base_url"`
	EngineRequestTimeout time.Duration `json:"engine_request_timeout"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`

	// Redis configuration (engine stub flow bus; optional)
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Engine stub configuration
	StubOTP string `json:"stub_otp"`

	// Default region used only for diagnostic phone formatting in logs
	DefaultPhoneRegion string `json:"default_phone_region"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	engineTimeout, err := time.ParseDuration(getEnvOrDefault("ENGINE_REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid ENGINE_REQUEST_TIMEOUT: %w", err)
	}

	tracingEnabled, err := strconv.ParseBool(getEnvOrDefault("TRACING_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}

	environment := getEnvOrDefault("ENVIRONMENT", "development")
	if environment != "development" && environment != "production" {
		return fmt.Errorf("invalid ENVIRONMENT %q: must be development or production", environment)
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: environment,

		// Auth engine configuration
		EngineBaseURL:        getEnvOrDefault("ENGINE_BASE_URL", "http://localhost:8090"),
		EngineRequestTimeout: engineTimeout,

		// Tracing configuration
		TracingEnabled:  tracingEnabled,
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// Engine stub configuration
		StubOTP: getEnvOrDefault("STUB_OTP", "1234"),

		// Diagnostics
		DefaultPhoneRegion: getEnvOrDefault("DEFAULT_PHONE_REGION", "BR"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
