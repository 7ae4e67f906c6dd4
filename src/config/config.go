package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port              string
	LogLevel          string
	CORSAllowedOrigin string

	SubscanAPIKey  string
	RequestTimeout time.Duration // per upstream HTTP request
	ThrottleEvery  time.Duration // minimum gap between upstream requests
	RetryAttempts  int           // total attempts per upstream call, including the first

	PageSize       int // rows per page for the resumable /transactions endpoint
	ExportPageSize int // rows per page for the bounded /export fetch
	MaxExportPages int // hard cap per phase for one export session

	BalanceCacheTTL  time.Duration
	ExportFilePrefix string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	apiKey := getEnv("SUBSCAN_API_KEY", "")
	if apiKey == "" {
		log.Println("Info: SUBSCAN_API_KEY not set. Subscan requests will run at the public (lower) rate limit.")
	}

	Cfg = &AppConfig{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),

		SubscanAPIKey:  apiKey,
		RequestTimeout: getEnvAsDuration("SUBSCAN_REQUEST_TIMEOUT", 20*time.Second),
		ThrottleEvery:  getEnvAsDuration("SUBSCAN_THROTTLE_INTERVAL", 250*time.Millisecond),
		RetryAttempts:  getEnvAsInt("SUBSCAN_RETRY_ATTEMPTS", 3),

		PageSize:       getEnvAsInt("TX_PAGE_SIZE", 50),
		ExportPageSize: getEnvAsInt("EXPORT_PAGE_SIZE", 100),
		MaxExportPages: getEnvAsInt("EXPORT_MAX_PAGES", 5),

		BalanceCacheTTL:  getEnvAsDuration("BALANCE_CACHE_TTL", 30*time.Second),
		ExportFilePrefix: getEnv("EXPORT_FILE_PREFIX", "opentx"),
	}

	if Cfg.RetryAttempts < 1 {
		log.Printf("WARNING: SUBSCAN_RETRY_ATTEMPTS must be at least 1, got %d. Using 1.", Cfg.RetryAttempts)
		Cfg.RetryAttempts = 1
	}
	if Cfg.PageSize < 1 || Cfg.ExportPageSize < 1 || Cfg.MaxExportPages < 1 {
		log.Fatalf("FATAL: page size and page cap settings must be positive (pageSize=%d exportPageSize=%d maxPages=%d)",
			Cfg.PageSize, Cfg.ExportPageSize, Cfg.MaxExportPages)
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, PageSize=%d, ExportPageSize=%d, MaxExportPages=%d",
		Cfg.Port, Cfg.LogLevel, Cfg.PageSize, Cfg.ExportPageSize, Cfg.MaxExportPages)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
