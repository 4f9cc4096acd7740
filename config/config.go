package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Engine     EngineConfig
	LiveSource LiveSourceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	BaseURL            string // public base URL used to build overlay links
}

// EngineConfig holds the auction engine tunables.
type EngineConfig struct {
	TickInterval   time.Duration // countdown resolution; 1s in production
	TopDonorsLimit int           // ranking size pushed to overlays
}

// LiveSourceConfig controls the gift-event source.
type LiveSourceConfig struct {
	Simulator    bool          // emit fake gifts instead of a real connector
	GiftInterval time.Duration // simulator emit interval
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8000"),
		},
		Engine: EngineConfig{
			TickInterval:   time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
			TopDonorsLimit: getEnvInt("TOP_DONORS_LIMIT", 5),
		},
		LiveSource: LiveSourceConfig{
			Simulator:    getEnvBool("LIVESOURCE_SIMULATOR", false),
			GiftInterval: time.Duration(getEnvInt("SIMULATOR_INTERVAL_MS", 3000)) * time.Millisecond,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
