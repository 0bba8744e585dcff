package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env   string
	Port  string
	DBURL string

	RecoveryTokenSecret string
	RecoveryTokenTTL    time.Duration

	LoginMaxAttempts int
	LockoutDuration  time.Duration
	MinPasswordAge   time.Duration

	LogFile string
}

func Load() *Config {
	return &Config{
		Env:                 getEnv("ENV", "development"),
		Port:                getEnv("PORT", "8888"),
		DBURL:               mustGetEnv("DB_URL"),
		RecoveryTokenSecret: mustGetEnv("RECOVERY_TOKEN_SECRET"),
		RecoveryTokenTTL:    time.Duration(getEnvAsInt("RECOVERY_TOKEN_TTL_MINUTES", 10)) * time.Minute,
		LoginMaxAttempts:    getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LockoutDuration:     time.Duration(getEnvAsInt("LOCKOUT_MINUTES", 15)) * time.Minute,
		MinPasswordAge:      time.Duration(getEnvAsInt("MIN_PASSWORD_AGE_HOURS", 24)) * time.Hour,
		LogFile:             getEnv("LOG_FILE", ""),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
