package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port                  string
	DatabasePath          string
	LogLevel              string
	ClassificationMapPath string
	MaxUploadSizeBytes    int64

	// OpeningBalanceRowIndex is the data-row index (after the header) that a
	// bank statement export reserves for the opening balance. Row indexes are
	// zero-based; the row at this index is never treated as a transaction.
	OpeningBalanceRowIndex int

	// SettingsWriteQuietPeriod is how long an edited settings field must stay
	// quiet before the pending write is flushed to the database. A newer edit
	// to the same field supersedes any pending write.
	SettingsWriteQuietPeriod time.Duration

	ReportCacheExpiry  time.Duration
	ReportCacheCleanup time.Duration
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

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	openingBalanceRowStr := getEnv("OPENING_BALANCE_ROW_INDEX", "0")
	openingBalanceRow, err := strconv.Atoi(openingBalanceRowStr)
	if err != nil || openingBalanceRow < 0 {
		log.Printf("WARNING: Invalid OPENING_BALANCE_ROW_INDEX '%s'. Using default 0.", openingBalanceRowStr)
		openingBalanceRow = 0
	}

	Cfg = &AppConfig{
		Port:                     getEnv("PORT", "8080"),
		DatabasePath:             getEnv("DATABASE_PATH", "./dashboard.db"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		ClassificationMapPath:    getEnv("CLASSIFICATION_MAP_PATH", "data/classification_map.json"),
		MaxUploadSizeBytes:       maxUploadSizeBytes,
		OpeningBalanceRowIndex:   openingBalanceRow,
		SettingsWriteQuietPeriod: getEnvAsDuration("SETTINGS_WRITE_QUIET_PERIOD", time.Second),
		ReportCacheExpiry:        getEnvAsDuration("REPORT_CACHE_EXPIRY", 15*time.Minute),
		ReportCacheCleanup:       getEnvAsDuration("REPORT_CACHE_CLEANUP", 30*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, ClassificationMap=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ClassificationMapPath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
