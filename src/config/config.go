package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type TrueLayerConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	APIBase      string
}

type Trading212Config struct {
	ExportURL  string
	BalanceURL string
}

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// DemoMode serves fixed sample data and rejects mutations. It is
	// injected into the providers at startup, never read globally.
	DemoMode bool

	// StaleAfterHours is the staleness threshold for cached source data.
	StaleAfterHours float64

	// Single-user login credentials. PasswordHash is a bcrypt hash.
	Username     string
	PasswordHash string

	TrueLayer  TrueLayerConfig
	Trading212 Trading212Config
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		DemoMode:        getEnvBool("DEMO_MODE", false),
		StaleAfterHours: getEnvFloat("STALE_AFTER_HOURS", 1),
		Username:        getEnv("UNIFY_USERNAME", "admin"),
		PasswordHash:    getEnv("UNIFY_PASSWORD_HASH", ""),
		TrueLayer: TrueLayerConfig{
			ClientID:     getEnv("TRUELAYER_CLIENT_ID", ""),
			ClientSecret: getEnv("TRUELAYER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TRUELAYER_REDIRECT_URI", ""),
			AuthURL:      getEnv("TRUELAYER_AUTH_URL", "https://auth.truelayer.com"),
			TokenURL:     getEnv("TRUELAYER_TOKEN_URL", "https://auth.truelayer.com/connect/token"),
			APIBase:      getEnv("TRUELAYER_API_BASE", "https://api.truelayer.com/data/v1"),
		},
		Trading212: Trading212Config{
			ExportURL:  getEnv("TRADING212_EXPORT_URL", "https://live.trading212.com/api/v0/history/exports"),
			BalanceURL: getEnv("TRADING212_BALANCE_URL", "https://live.trading212.com/api/v0/equity/account/cash"),
		},
	}

	// Demo mode never opens the pool, so it runs without a database.
	if cfg.DatabaseURL == "" && !cfg.DemoMode {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
