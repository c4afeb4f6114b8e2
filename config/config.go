package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	Port       string
	Env        string

	// PixelPay gateway credentials. The secret doubles as the shared
	// secret for payment-hash verification, so both KeyID and Secret
	// are required at startup.
	PixelEndpoint string
	PixelKeyID    string
	PixelSecret   string
	PixelEnv      string // live or sandbox

	// Shared key the merchant backend sends as X-App-Key. Empty means
	// the guard is disabled (useful in dev).
	AppKey string

	GatewayTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject env directly.
	_ = godotenv.Load()

	config := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
		PixelEndpoint: strings.TrimRight(os.Getenv("PIXELPAY_ENDPOINT"), "/"),
		PixelKeyID:    os.Getenv("PIXELPAY_KEY_ID"),
		PixelSecret:   os.Getenv("PIXELPAY_SECRET"),
		PixelEnv:      os.Getenv("PIXELPAY_ENV"),
		AppKey:        strings.TrimSpace(os.Getenv("INTERNAL_APP_KEY")),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.PixelEnv != "sandbox" {
		config.PixelEnv = "live"
	}
	config.GatewayTimeout = 15 * time.Second
	if raw := os.Getenv("PIXELPAY_TIMEOUT_SECONDS"); raw != "" {
		var secs int
		if _, err := fmt.Sscanf(raw, "%d", &secs); err == nil && secs > 0 {
			config.GatewayTimeout = time.Duration(secs) * time.Second
		}
	}

	if err := config.validateGateway(); err != nil {
		return nil, err
	}

	return config, nil
}

// validateGateway enforces that hash verification and remote status
// queries can always run. A missing secret must fail at startup, not be
// mistaken for an unverified payment later.
func (c *Config) validateGateway() error {
	if c.PixelEndpoint == "" {
		return fmt.Errorf("PIXELPAY_ENDPOINT not set")
	}
	if c.PixelKeyID == "" {
		return fmt.Errorf("PIXELPAY_KEY_ID not set")
	}
	if c.PixelSecret == "" {
		return fmt.Errorf("PIXELPAY_SECRET not set")
	}
	return nil
}
