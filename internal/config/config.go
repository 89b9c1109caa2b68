package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBMaxAttempts int

	ServerPort     string
	JWTSecret      string
	JWTExpiryHours int

	// Trash retention policy and sweep schedule
	RetentionDays int
	SweepInterval time.Duration
	SweepGrace    time.Duration

	// Rate limiting for auth endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// SMTP email configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AppName      string
	AppURL       string

	// Redis (token revocation)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "root"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "notesphere"),
		DBMaxAttempts: getEnvInt("DB_MAX_ATTEMPTS", 10),

		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "default-secret-change-this"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		RetentionDays: getEnvInt("RETENTION_DAYS", 30),
		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_HOURS", 24)) * time.Hour,
		SweepGrace:    time.Duration(getEnvInt("SWEEP_GRACE_SECONDS", 10)) * time.Second,

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_MINUTES", 15)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		AppName:      getEnv("APP_NAME", "NoteSphere"),
		AppURL:       getEnv("APP_URL", "http://localhost:3000"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return parsed
}
