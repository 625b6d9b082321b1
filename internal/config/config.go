package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	ListenAddr string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	// OpenAI-compatible chat-completions gateway for semantic checks.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	JWTSecret string

	// Optional operator alerting; alerts are disabled when the token is empty.
	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load reads the configuration from the environment, applying development
// defaults for anything unset.
func Load() *Config {
	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN: fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "user"),
			getEnv("DB_PASSWORD", "password"),
			getEnv("DB_NAME", "tellnoone"),
			getEnv("DB_PORT", "5432"),
		),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LLMBaseURL:    getEnv("LLM_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LLMModel:      getEnv("LLM_MODEL", "google/gemini-2.5-flash"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if raw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.TelegramAdminChatID = id
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
