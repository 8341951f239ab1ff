package infrastructure

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, loaded from environment
// variables (with .env support for local runs).
type Config struct {
	TurkishBotToken string
	KoreanBotToken  string
	DatabaseURL     string
	JWTSecret       string
	HTTPAddr        string

	AdminIDs      []string
	AdminUsername string
	AdminPassword string
	AdminPanelURL string

	OpenAIKey     string
	GeminiKeys    []string
	AssemblyAIKey string
	DeepgramKey   string

	UploadDir     string
	CodeStorePath string
	LogLevel      string
	Environment   string
	DispatchSpec  string
}

// LoadConfig reads configuration from the environment. godotenv.Load does
// not override variables already set, so real env always wins over .env.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TurkishBotToken: os.Getenv("BOT_TOKEN"),
		KoreanBotToken:  os.Getenv("KOREAN_BOT_TOKEN"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		HTTPAddr:        getenvDefault("HTTP_ADDR", "0.0.0.0:8080"),
		AdminUsername:   getenvDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:   getenvDefault("ADMIN_PASSWORD", "admin123"),
		AdminPanelURL:   getenvDefault("ADMIN_PANEL_URL", "http://localhost:3001"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AssemblyAIKey:   os.Getenv("ASSEMBLYAI_API_KEY"),
		DeepgramKey:     os.Getenv("DEEPGRAM_API_KEY"),
		UploadDir:       getenvDefault("UPLOAD_DIR", "uploads/posts"),
		CodeStorePath:   getenvDefault("CODE_STORE_PATH", "login-codes.db"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		Environment:     getenvDefault("ENVIRONMENT", "development"),
		DispatchSpec:    getenvDefault("DISPATCH_CRON_SPEC", "* * * * *"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	for _, id := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	// Up to four rotating Gemini keys, matching the rate-limit pool size.
	for _, name := range []string{"GEMINI_API_KEY_1", "GEMINI_API_KEY_2", "GEMINI_API_KEY_3", "GEMINI_API_KEY_4"} {
		if key := os.Getenv(name); len(key) > 10 {
			cfg.GeminiKeys = append(cfg.GeminiKeys, key)
		}
	}

	return cfg, nil
}

// IsAdmin reports whether a Telegram id is in the configured allow-list.
func (c *Config) IsAdmin(telegramID string) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
