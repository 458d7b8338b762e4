package config

import (
	"os"
	"strconv"
	"time"

	"marketmapper/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Credits  CreditConfig
	Research ResearchConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds LLM provider settings.
//
// APIKey may be empty at load time: the gateway checks it lazily on first use
// so read-only deployments can start without a credential.
type AIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// CreditConfig holds credit ledger settings
type CreditConfig struct {
	DefaultCredits int
}

// ResearchConfig holds cache TTL tiers for the research providers.
// Sentiment and web signals decay within hours; firmographic data holds for a day.
type ResearchConfig struct {
	SentimentTTL     time.Duration
	WebIntelTTL      time.Duration
	CompetitorTTL    time.Duration
	MarketTTL        time.Duration
	ProviderDeadline time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		AI: AIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 4000),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
			Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Credits: CreditConfig{
			DefaultCredits: getEnvIntOrDefault("DEFAULT_CREDITS", 10),
		},
		Research: ResearchConfig{
			SentimentTTL:     getEnvDurationOrDefault("SENTIMENT_TTL", 6*time.Hour),
			WebIntelTTL:      getEnvDurationOrDefault("WEB_INTEL_TTL", 6*time.Hour),
			CompetitorTTL:    getEnvDurationOrDefault("COMPETITOR_TTL", 24*time.Hour),
			MarketTTL:        getEnvDurationOrDefault("MARKET_TTL", 24*time.Hour),
			ProviderDeadline: getEnvDurationOrDefault("PROVIDER_DEADLINE", 15*time.Second),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Credits.DefaultCredits < 0 {
		return errors.ConfigInvalid("DEFAULT_CREDITS must not be negative")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("MAX_TOKENS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
