package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           string
	AllowedOrigins string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTKey string // HS256 secret shared with the identity provider

	StorageURL        string
	StorageServiceKey string
	StorageBucket     string
	MaxUploadMB       int

	RedisAddr         string
	ProgressRateLimit int // progress writes per learner per minute

	ProgressMaxAttempts int
	ReconcileCron       string

	SendGridAPIKey string
	EmailSender    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:           getEnv("PORT", "3000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lexorial"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		StorageURL:        strings.TrimRight(getEnv("STORAGE_URL", ""), "/"),
		StorageServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", "lesson-slides"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 5),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		ProgressRateLimit: getEnvInt("PROGRESS_RATE_LIMIT", 30),

		ProgressMaxAttempts: getEnvInt("PROGRESS_MAX_ATTEMPTS", 3),
		ReconcileCron:       getEnv("RECONCILE_CRON", "@every 1h"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@lexorial.app"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StorageURL == "" {
		log.Println("Warning: STORAGE_URL not set. Slide uploads are disabled.")
	}
	if AppConfig.ProgressMaxAttempts < 1 {
		AppConfig.ProgressMaxAttempts = 1
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
