// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"buttonshop/internal/colors"
	"buttonshop/internal/pricing"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// TrustProxy makes the rate limiter honor X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	// WriteRateLimit is how many cart quotes and custom requests one client
	// may send per minute.
	WriteRateLimit int

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for button images
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Quantity pricing. PricingFile, when set, replaces the three env tiers.
	PricingFile string
	Pricing     *pricing.Table

	// Color aggregation thresholds
	ColorClusterDistance      float64
	ColorNeutralSpread        float64
	ColorSecondaryMinDistance float64
}

// LoadEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode or a numeric setting does not parse.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		TrustProxy: os.Getenv("TRUST_PROXY") == "true",

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "buttonshop"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "buttonshop"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "buttonshop-images"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		PricingFile: os.Getenv("PRICING_FILE"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	var err error
	if cfg.WriteRateLimit, err = envInt("WRITE_RATE_LIMIT", 30); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit <= 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must be positive")
	}

	if cfg.PricingFile != "" {
		cfg.Pricing, err = LoadPricingFile(cfg.PricingFile)
	} else {
		cfg.Pricing, err = pricingFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if cfg.ColorClusterDistance, err = envFloat("COLOR_CLUSTER_DISTANCE", colors.DefaultClusterDistance); err != nil {
		return nil, err
	}
	if cfg.ColorNeutralSpread, err = envFloat("COLOR_NEUTRAL_SPREAD", colors.DefaultNeutralSpread); err != nil {
		return nil, err
	}
	if cfg.ColorSecondaryMinDistance, err = envFloat("COLOR_SECONDARY_MIN_DISTANCE", colors.DefaultSecondaryMinDistance); err != nil {
		return nil, err
	}

	return cfg, nil
}

// pricingFromEnv builds the three-tier table from PRICE_* variables.
func pricingFromEnv() (*pricing.Table, error) {
	base, err := envDecimal("PRICE_TIER0", "5.00")
	if err != nil {
		return nil, err
	}
	tier1, err := envDecimal("PRICE_TIER1", "4.50")
	if err != nil {
		return nil, err
	}
	tier1Min, err := envInt("PRICE_TIER1_MIN", 100)
	if err != nil {
		return nil, err
	}
	tier2, err := envDecimal("PRICE_TIER2", "4.00")
	if err != nil {
		return nil, err
	}
	tier2Min, err := envInt("PRICE_TIER2_MIN", 200)
	if err != nil {
		return nil, err
	}

	table, err := pricing.FromConfig(base, tier1, tier1Min, tier2, tier2Min)
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return table, nil
}

// pricingFile is the YAML layout of PRICING_FILE:
//
//	tiers:
//	  - min_quantity: 0
//	    price: "5.00"
//	  - min_quantity: 100
//	    price: "4.50"
type pricingFile struct {
	Tiers []struct {
		MinQuantity int    `yaml:"min_quantity"`
		Price       string `yaml:"price"`
	} `yaml:"tiers"`
}

// LoadPricingFile reads a tier table of any length from a YAML file.
func LoadPricingFile(path string) (*pricing.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	return ParsePricing(data)
}

// ParsePricing parses the YAML tier table format.
func ParsePricing(data []byte) (*pricing.Table, error) {
	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	tiers := make([]pricing.Tier, 0, len(f.Tiers))
	for i, t := range f.Tiers {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return nil, fmt.Errorf("pricing tier %d: invalid price %q: %w", i, t.Price, err)
		}
		tiers = append(tiers, pricing.Tier{MinQuantity: t.MinQuantity, Price: price})
	}

	table, err := pricing.NewTable(tiers...)
	if err != nil {
		return nil, fmt.Errorf("pricing file: %w", err)
	}
	return table, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasStorage reports whether object storage credentials are configured.
func (c *Config) HasStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// ColorAggregator builds the color aggregator from the configured thresholds.
func (c *Config) ColorAggregator() *colors.Aggregator {
	return colors.NewAggregator(c.ColorClusterDistance, c.ColorNeutralSpread, c.ColorSecondaryMinDistance)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func envDecimal(key, fallback string) (decimal.Decimal, error) {
	v := envOrDefault(key, fallback)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid price %q", key, v)
	}
	return d, nil
}
