package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Agent   AgentConfig
	OpenAI  OpenAIConfig
	Amazon  AmazonConfig
	Listing ListingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// StoreConfig selects and tunes the task store backend.
// When DSN is set the postgres store is used, otherwise in-memory.
type StoreConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// AgentConfig holds the browser agent runtime configuration
type AgentConfig struct {
	APIBase      string
	APIKey       string
	MaxSteps     int
	StepTimeout  int // seconds
	RunTimeout   int // seconds, whole-run budget
	PollInterval int // seconds between status polls
	Enabled      bool
}

// OpenAIConfig holds the OpenAI-compatible chat API configuration
// used for intent parsing.
type OpenAIConfig struct {
	APIKey      string
	APIBase     string
	ChatModel   string
	Temperature float64
	MaxTokens   int
	Timeout     int
	Enabled     bool
}

// AmazonConfig holds storefront settings
type AmazonConfig struct {
	BaseURL string
}

// ListingConfig caps listing task sizes
type ListingConfig struct {
	DefaultMaxProducts int
	MaxProducts        int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8000),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Store: StoreConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Agent: AgentConfig{
			APIBase:      getEnv("BROWSER_USE_API_BASE", "https://api.browser-use.com/api/v1"),
			APIKey:       getEnv("BROWSER_USE_API_KEY", ""),
			MaxSteps:     getEnvAsInt("AGENT_MAX_STEPS", 40),
			StepTimeout:  getEnvAsInt("AGENT_STEP_TIMEOUT", 300),
			RunTimeout:   getEnvAsInt("AGENT_RUN_TIMEOUT", 1800),
			PollInterval: getEnvAsInt("AGENT_POLL_INTERVAL", 3),
			Enabled:      getEnv("BROWSER_USE_API_KEY", "") != "",
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			APIBase:     getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:   getEnv("OPENAI_CHAT_MODEL", "gpt-4.1-mini"),
			Temperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 2048),
			Timeout:     getEnvAsInt("OPENAI_TIMEOUT", 60),
			Enabled:     getEnv("OPENAI_API_KEY", "") != "",
		},
		Amazon: AmazonConfig{
			BaseURL: getEnv("AMAZON_BASE_URL", "https://www.amazon.in"),
		},
		Listing: ListingConfig{
			DefaultMaxProducts: getEnvAsInt("LIST_DEFAULT_MAX_PRODUCTS", 5),
			MaxProducts:        getEnvAsInt("LIST_MAX_PRODUCTS", 20),
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
