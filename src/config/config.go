package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret    string
	Port         string
	DatabasePath string
	LogLevel     string

	// Pipeline paths. ImportDir is the dropbox directory scanned for
	// export files; LedgerPath is where the consolidated ledger CSV is
	// written (atomically, via a temp file in the same directory).
	ImportDir  string
	LedgerPath string

	// Matching threshold for the fuzzy classification tier, in [0,1].
	FuzzyMatchThreshold float64

	// Bounded worker pool size for per-file loads.
	LoaderWorkers int

	AccessTokenExpiry  time.Duration
	MaxUploadSizeBytes int64
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

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	accessTokenExpiryStr := getEnv("ACCESS_TOKEN_EXPIRY", "60m")
	accessTokenExpiry, err := time.ParseDuration(accessTokenExpiryStr)
	if err != nil {
		log.Printf("WARNING: Invalid ACCESS_TOKEN_EXPIRY format '%s'. Using default 60m. Error: %v", accessTokenExpiryStr, err)
		accessTokenExpiry = 60 * time.Minute
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	fuzzyThreshold := getEnvAsFloat("FUZZY_MATCH_THRESHOLD", 0.60)
	if fuzzyThreshold < 0 || fuzzyThreshold > 1 {
		log.Printf("WARNING: FUZZY_MATCH_THRESHOLD %v out of [0,1]. Using default 0.60.", fuzzyThreshold)
		fuzzyThreshold = 0.60
	}

	loaderWorkers := getEnvAsInt("LOADER_WORKERS", 4)
	if loaderWorkers < 1 {
		log.Printf("WARNING: LOADER_WORKERS %d invalid. Using 1.", loaderWorkers)
		loaderWorkers = 1
	}

	Cfg = &AppConfig{
		JWTSecret:    jwtSecret,
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./moneydash.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		ImportDir:  getEnv("IMPORT_DIR", "data/raw"),
		LedgerPath: getEnv("LEDGER_PATH", "data/processed/transactions_combined_enhanced.csv"),

		FuzzyMatchThreshold: fuzzyThreshold,
		LoaderWorkers:       loaderWorkers,

		AccessTokenExpiry:  accessTokenExpiry,
		MaxUploadSizeBytes: maxUploadSizeBytes,
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, ImportDir=%s, LedgerPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ImportDir, Cfg.LedgerPath)
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

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Float value for %s not set or empty, using default: %v", key, fallback)
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}
