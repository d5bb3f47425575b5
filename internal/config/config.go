package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	APIToken      string
	UseProxy      bool
	DBPath        string
	ServerPort    string
	LogLevel      string
	AllowedOrigin string
	SnapshotTTL   time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIToken:      getEnv("CLASH_ROYALE_API_TOKEN", ""),
		UseProxy:      getEnvBool("USE_PROXY", true),
		DBPath:        getEnv("DB_PATH", "wrapped.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		SnapshotTTL:   5 * time.Minute,
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("CLASH_ROYALE_API_TOKEN is required")
	}

	logger.Info().
		Bool("use_proxy", cfg.UseProxy).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("snapshot_ttl", cfg.SnapshotTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
