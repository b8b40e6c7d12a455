package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	DatabasePath string
	LogLevel     string
	CurrencyCode string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}
	if errEnv != nil && !os.IsNotExist(errEnv) {
		log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
	}

	Cfg = &AppConfig{
		DatabasePath: getEnv("DATABASE_PATH", "./farmbooks.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CurrencyCode: getEnv("CURRENCY_CODE", "EUR"),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
