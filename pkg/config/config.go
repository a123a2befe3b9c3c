package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// DatabaseURL selects the PostgreSQL storage backend when set; otherwise
	// the file-backed store under DataDir is used.
	DatabaseURL string
	DataDir     string

	// JWTSecret enables bearer-token auth on the API when non-empty.
	JWTSecret string

	// LockWaitTimeout bounds how long a ledger operation waits for an
	// account lock.
	LockWaitTimeout time.Duration

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("LOCK_WAIT_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:         viper.GetString("PORT"),
		IsProduction: viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:  viper.GetString("PGSQL_URL"),
		DataDir:      viper.GetString("DATA_DIR"),
		JWTSecret:    viper.GetString("JWT_SECRET"),
		RateLimit:    viper.GetString("RATE_LIMIT"),
	}

	lockWaitStr := viper.GetString("LOCK_WAIT_TIMEOUT")
	lockWait, err := time.ParseDuration(lockWaitStr)
	if err != nil {
		lockWait = 5 * time.Second
		log.Printf("Warning: Invalid value for LOCK_WAIT_TIMEOUT ('%s'). Defaulting to %s.\n", lockWaitStr, lockWait)
	}
	cfg.LockWaitTimeout = lockWait

	if cfg.DatabaseURL == "" {
		log.Printf("PGSQL_URL not set; using file-backed store under %s\n", cfg.DataDir)
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set; API authentication is disabled.")
	}

	return cfg, nil
}
