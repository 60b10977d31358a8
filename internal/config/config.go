package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CUENTA_CONFIG"

// Product sources
const (
	ProductSourceMemory   = "memory"
	ProductSourceSQLite   = "sqlite"
	ProductSourcePostgres = "postgres"
)

// Store table sources
const (
	StoreSourceEmbedded = "embedded"
	StoreSourceFile     = "file"
	StoreSourceDynamoDB = "dynamodb"
)

// Config holds all configuration for the application.
// Defaults are overlaid by an optional YAML file (CUENTA_CONFIG) and then by
// environment variables, following 12-factor app principles.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Products  ProductsConfig  `yaml:"products"`
	Stores    StoresConfig    `yaml:"stores"`
	AWS       AWSConfig       `yaml:"aws"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	CORS      CORSConfig      `yaml:"cors"`
	LogLevel  string          `yaml:"logLevel"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	Host            string `yaml:"host"`
	ReadTimeout     int    `yaml:"readTimeout"`
	WriteTimeout    int    `yaml:"writeTimeout"`
	ShutdownTimeout int    `yaml:"shutdownTimeout"`
}

type AuthConfig struct {
	APIKeys []string `yaml:"apiKeys"` // Valid API keys for authentication
}

// ProductsConfig selects where the catalog comes from. For the memory source,
// FeedURLs are loaded at startup; without feeds the sample catalog is served.
type ProductsConfig struct {
	Source      string   `yaml:"source"`
	DatabaseDSN string   `yaml:"databaseDsn"`
	FeedURLs    []string `yaml:"feedUrls"`
}

type StoresConfig struct {
	Source string `yaml:"source"`
	File   string `yaml:"file"`
	Table  string `yaml:"table"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type OptimizerConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

type GeocoderConfig struct {
	URL       string `yaml:"url"`
	UserAgent string `yaml:"userAgent"`
	Timeout   int    `yaml:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 30,
		},
		Auth: AuthConfig{
			APIKeys: []string{"apitest"},
		},
		Products: ProductsConfig{
			Source: ProductSourceMemory,
		},
		Stores: StoresConfig{
			Source: StoreSourceEmbedded,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Optimizer: OptimizerConfig{
			Timeout: 30,
		},
		Geocoder: GeocoderConfig{
			URL:       "https://nominatim.openstreetmap.org",
			UserAgent: "Cuenta-App/1.0",
			Timeout:   10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the optional YAML file and the environment
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a YAML file over the current values; keys absent from the
// file keep their defaults
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvAsInt("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Auth.APIKeys = getEnvAsSlice("API_KEYS", c.Auth.APIKeys)

	c.Products.Source = getEnv("PRODUCT_SOURCE", c.Products.Source)
	c.Products.DatabaseDSN = getEnv("DATABASE_DSN", c.Products.DatabaseDSN)
	c.Products.FeedURLs = getEnvAsSlice("PRODUCT_FEED_URLS", c.Products.FeedURLs)

	c.Stores.Source = getEnv("STORE_SOURCE", c.Stores.Source)
	c.Stores.File = getEnv("STORES_FILE", c.Stores.File)
	c.Stores.Table = getEnv("STORES_TABLE", c.Stores.Table)

	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)

	c.Optimizer.URL = getEnv("OPTIMIZER_URL", c.Optimizer.URL)
	c.Optimizer.Timeout = getEnvAsInt("OPTIMIZER_TIMEOUT", c.Optimizer.Timeout)

	c.Geocoder.URL = getEnv("GEOCODER_URL", c.Geocoder.URL)
	c.Geocoder.UserAgent = getEnv("GEOCODER_USER_AGENT", c.Geocoder.UserAgent)

	c.CORS.AllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Products.Source {
	case ProductSourceMemory:
	case ProductSourceSQLite, ProductSourcePostgres:
		if c.Products.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for product source %s", c.Products.Source)
		}
	default:
		return fmt.Errorf("invalid product source: %s (must be memory, sqlite, or postgres)", c.Products.Source)
	}

	switch c.Stores.Source {
	case StoreSourceEmbedded:
	case StoreSourceFile:
		if c.Stores.File == "" {
			return fmt.Errorf("STORES_FILE is required for store source file")
		}
	case StoreSourceDynamoDB:
		if c.Stores.Table == "" {
			return fmt.Errorf("STORES_TABLE is required for store source dynamodb")
		}
	default:
		return fmt.Errorf("invalid store source: %s (must be embedded, file, or dynamodb)", c.Stores.Source)
	}

	if c.Optimizer.Timeout <= 0 || c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("optimizer and geocoder timeouts must be positive")
	}

	return nil
}

// UsesAWS reports whether any configured source needs AWS credentials
func (c *Config) UsesAWS() bool {
	if c.Stores.Source == StoreSourceDynamoDB {
		return true
	}
	for _, u := range c.Products.FeedURLs {
		if strings.HasPrefix(u, "s3://") {
			return true
		}
	}
	return false
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
