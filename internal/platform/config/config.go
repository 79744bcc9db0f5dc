package config

import (
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // REPORT_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	defaultJWTSecret  = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTExpiry  = time.Hour
	defaultJWTIssuer  = "mbg-dapur-ledger"
	defaultPosthogURL = "https://eu.i.posthog.com"
	defaultTimezone   = "Asia/Jakarta"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageDriver  string
	MigrationsPath string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	CORSAllowedOrigins []string
	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	LoginRateLimit     string

	PosthogAPIKey   string
	PosthogEndpoint string

	EntryNumberPrefix     string
	AutoEntryNumberPrefix string

	// ReportLocation decides which calendar day "today" is for default report
	// dates and reversal dates.
	ReportLocation *time.Location
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", defaultPosthogURL)
	v.SetDefault("ENTRY_NUMBER_PREFIX", "JE")
	v.SetDefault("AUTO_ENTRY_NUMBER_PREFIX", "AJ")
	v.SetDefault("REPORT_TIMEZONE", defaultTimezone)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		DatabaseURL:           v.GetString("PGSQL_URL"),
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:         strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimit:             v.GetString("RATE_LIMIT"),
		LoginRateLimit:        v.GetString("LOGIN_RATE_LIMIT"),
		PosthogAPIKey:         v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:       v.GetString("POSTHOG_ENDPOINT"),
		EntryNumberPrefix:     strings.ToUpper(v.GetString("ENTRY_NUMBER_PREFIX")),
		AutoEntryNumberPrefix: strings.ToUpper(v.GetString("AUTO_ENTRY_NUMBER_PREFIX")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		slog.Warn("Unknown STORAGE_DRIVER, using postgres", slog.String("storage_driver", cfg.StorageDriver))
		cfg.StorageDriver = StoragePostgres
	}
	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		slog.Warn("JWT_SECRET not set, using default insecure key")
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = defaultJWTIssuer
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = defaultJWTExpiry
		slog.Warn("Invalid JWT_EXPIRY_DURATION, using default",
			slog.String("value", jwtExpiryStr),
			slog.String("default", jwtExpiry.String()))
	}
	cfg.JWTExpiryDuration = jwtExpiry

	if cfg.EntryNumberPrefix == "" {
		cfg.EntryNumberPrefix = "JE"
	}
	if cfg.AutoEntryNumberPrefix == "" {
		cfg.AutoEntryNumberPrefix = "AJ"
	}
	if cfg.EntryNumberPrefix == cfg.AutoEntryNumberPrefix {
		slog.Warn("ENTRY_NUMBER_PREFIX equals AUTO_ENTRY_NUMBER_PREFIX, manual and auto entries share one sequence",
			slog.String("prefix", cfg.EntryNumberPrefix))
	}

	tz := strings.TrimSpace(v.GetString("REPORT_TIMEZONE"))
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
		slog.Warn("Invalid REPORT_TIMEZONE, using UTC",
			slog.String("value", tz),
			slog.String("error", err.Error()))
	}
	cfg.ReportLocation = loc

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
