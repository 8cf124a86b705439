package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration time.Duration
	ServerPort    string
	// UTCOffsetMin is the organization's fixed local offset in minutes east
	// of UTC. All wall-clock schedule times are interpreted in this offset.
	UTCOffsetMin int
	// EnabledPresetIDs restricts which presets the submission surface
	// offers. Empty means every enabled preset is available.
	EnabledPresetIDs []uint
}

func Load() *Config {
	// .env is optional; deployments usually set the environment directly
	godotenv.Load()

	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/roster"),
		JWTSecret:        getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration:    24 * time.Hour,
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		UTCOffsetMin:     getEnvInt("SCHEDULE_UTC_OFFSET_MIN", 540),
		EnabledPresetIDs: getEnvUints("ENABLED_PRESETS"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvUints parses a comma-separated id list ("1,4,7").
func getEnvUints(key string) []uint {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		if n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32); err == nil {
			ids = append(ids, uint(n))
		}
	}
	return ids
}
