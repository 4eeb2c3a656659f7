package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Key-value store
	StoreDriver    string
	DatabaseURL    string
	EnableDBCheck  bool
	SQLitePath     string
	MigrationsPath string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Payments
	StripeSecretKey string
	PaymentCurrency string
	InitialDeposit  decimal.Decimal

	// Outbound email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	DashboardURL string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	AllowedOrigins []string
	PosthogAPIKey  string
	RateLimit      string

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("SQLITE_PATH", "tax_filing.db")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("JWT_ISSUER", "tax-filing-app")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("PAYMENT_CURRENCY", "CAD")
	viper.SetDefault("INITIAL_DEPOSIT", "50.00")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("EMAIL_FROM", "no-reply@localhost")
	viper.SetDefault("DASHBOARD_URL", "http://localhost:3000/dashboard")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "60-M")
	viper.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	viper.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		StoreDriver:            strings.ToLower(viper.GetString("STORE_DRIVER")),
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		EnableDBCheck:          viper.GetBool("ENABLE_DB_CHECK"),
		SQLitePath:             viper.GetString("SQLITE_PATH"),
		MigrationsPath:         viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:              viper.GetString("JWT_SECRET"),
		JWTIssuer:              viper.GetString("JWT_ISSUER"),
		StripeSecretKey:        viper.GetString("STRIPE_SECRET_KEY"),
		PaymentCurrency:        strings.ToUpper(viper.GetString("PAYMENT_CURRENCY")),
		SMTPHost:               viper.GetString("SMTP_HOST"),
		SMTPPort:               viper.GetInt("SMTP_PORT"),
		SMTPUsername:           viper.GetString("SMTP_USERNAME"),
		SMTPPassword:           viper.GetString("SMTP_PASSWORD"),
		EmailFrom:              viper.GetString("EMAIL_FROM"),
		DashboardURL:           viper.GetString("DASHBOARD_URL"),
		GoogleClientID:         viper.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:     viper.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:      viper.GetString("GOOGLE_REDIRECT_URL"),
		AllowedOrigins:         splitAndTrim(viper.GetString("ALLOWED_ORIGINS")),
		PosthogAPIKey:          viper.GetString("POSTHOG_API_KEY"),
		RateLimit:              viper.GetString("RATE_LIMIT"),
		BootstrapAdminEmail:    viper.GetString("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: viper.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		log.Printf("Warning: Invalid value for STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverMemory)
		cfg.StoreDriver = StoreDriverMemory
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 12 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	depositStr := viper.GetString("INITIAL_DEPOSIT")
	deposit, err := decimal.NewFromString(depositStr)
	if err != nil || !deposit.IsPositive() {
		deposit = decimal.RequireFromString("50.00")
		log.Printf("Warning: Invalid value for INITIAL_DEPOSIT ('%s'). Defaulting to %s.\n", depositStr, deposit.StringFixed(2))
	}
	cfg.InitialDeposit = deposit

	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set. Payment operations will fail until it is configured.")
	}
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Notification emails will only be logged.")
	}
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}

	return cfg, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
