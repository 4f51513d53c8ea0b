package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Remote assistant
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	Model            string
	AssistantTimeout time.Duration
	PromptFile       string
	// Local intent rules
	RulesFile  string
	ReplyDelay time.Duration
	// Chat sessions
	SessionTTL           time.Duration
	MaxSessions          int
	SessionSweepSchedule string
	// Back office database; memory repository when empty
	DatabaseURL string
	// Logging
	LogLevel  string
	LogPretty bool
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:                 getEnvDefault("PORT", "8080"),
		AllowedOrigin:        getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:        os.Getenv("OPENAI_BASE_URL"),
		Model:                getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AssistantTimeout:     getEnvDurationDefault("ASSISTANT_TIMEOUT", 20*time.Second),
		PromptFile:           os.Getenv("ASSISTANT_PROMPT_FILE"),
		RulesFile:            os.Getenv("INTENT_RULES_FILE"),
		ReplyDelay:           getEnvDurationDefault("REPLY_DELAY", 700*time.Millisecond),
		SessionTTL:           getEnvDurationDefault("SESSION_TTL", 30*time.Minute),
		MaxSessions:          getEnvIntDefault("MAX_SESSIONS", 1000),
		SessionSweepSchedule: getEnvDefault("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		DatabaseURL:          os.Getenv("DB_URL"),
		LogLevel:             strings.ToLower(getEnvDefault("LOG_LEVEL", "info")),
		LogPretty:            getEnvBoolDefault("LOG_PRETTY", false),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; unmatched questions will get the unavailable notice")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// getEnvDurationDefault accepts Go duration strings ("700ms", "20s"); a zero
// duration is a valid value.
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d >= 0 {
			return d
		}
	}
	return def
}
