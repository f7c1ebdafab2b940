package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Posting engine configuration
	EntryNumberPrefix   string
	AuthorizedApprovers []string
	AuditFailedAttempts bool
	LockedPeriods       []string
	PeriodOverrideRoles []string
	LockTimeout         time.Duration

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string

	PosthogAPIKey string `mapstructure:"POSTHOG_API_KEY"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("ENTRY_NUMBER_PREFIX", "JE")
	viper.SetDefault("AUTHORIZED_APPROVERS", "")
	viper.SetDefault("AUDIT_FAILED_ATTEMPTS", false)
	viper.SetDefault("LOCKED_PERIODS", "")
	viper.SetDefault("PERIOD_OVERRIDE_ROLES", "CONTROLLER")
	viper.SetDefault("LOCK_TIMEOUT", "3s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	// This allows overriding defaults with .env file values, which can then be overridden by actual environment variables.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.EntryNumberPrefix = viper.GetString("ENTRY_NUMBER_PREFIX")
	if cfg.EntryNumberPrefix == "" {
		cfg.EntryNumberPrefix = "JE"
		log.Printf("Warning: ENTRY_NUMBER_PREFIX not set. Defaulting to %s.\n", cfg.EntryNumberPrefix)
	}

	cfg.AuthorizedApprovers = splitList(viper.GetString("AUTHORIZED_APPROVERS"))
	if len(cfg.AuthorizedApprovers) == 0 {
		log.Println("Warning: AUTHORIZED_APPROVERS not set. All approval requests will be denied.")
	}

	cfg.AuditFailedAttempts = viper.GetBool("AUDIT_FAILED_ATTEMPTS")
	cfg.LockedPeriods = splitList(viper.GetString("LOCKED_PERIODS"))
	cfg.PeriodOverrideRoles = splitList(viper.GetString("PERIOD_OVERRIDE_ROLES"))

	lockTimeoutStr := viper.GetString("LOCK_TIMEOUT")
	lockTimeout, err := time.ParseDuration(lockTimeoutStr)
	if err != nil {
		lockTimeout = 3 * time.Second
		if lockTimeoutStr != "" {
			log.Printf("Warning: Invalid value for LOCK_TIMEOUT ('%s'). Defaulting to %s.\n", lockTimeoutStr, lockTimeout.String())
		}
	}
	cfg.LockTimeout = lockTimeout

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

// splitList parses a comma-separated env value into trimmed non-empty items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
