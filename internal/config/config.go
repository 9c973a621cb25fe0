// Package config loads client configuration from a YAML file, an optional
// .env file and environment overrides, in that order.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/api"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	// Routes overrides auth endpoint paths; empty entries keep the defaults.
	Routes api.Routes `yaml:"routes"`
}

// APIConfig configures the backend origin and the shared HTTP client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" env:"VENDOR_API_BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" env:"VENDOR_API_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"VENDOR_API_RPS"`
	Burst             int           `yaml:"burst" env:"VENDOR_API_BURST"`
}

// StorageConfig selects where the token and active store are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"VENDOR_STORAGE_BACKEND"`
	Dir     string `yaml:"dir" env:"VENDOR_STORAGE_DIR"`
	// SealKey is a hex-encoded 32-byte key; when set, file values are sealed.
	SealKey       string `yaml:"seal_key" env:"VENDOR_STORAGE_SEAL_KEY"`
	RedisAddr     string `yaml:"redis_addr" env:"VENDOR_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"VENDOR_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"VENDOR_REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"VENDOR_REDIS_PREFIX"`
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"VENDOR_LOG_LEVEL"`
	Format string `yaml:"format" env:"VENDOR_LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := ".tradeet"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".tradeet")
	}

	return &Config{
		API: APIConfig{
			BaseURL: "https://api.tradeet.ng",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			Dir:         dir,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "tradeet:vendor",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file; a
// missing envFile is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and normalizes the base URL.
func (c *Config) Validate() error {
	base := strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("config: api.base_url must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: api.base_url scheme must be http or https")
	}
	c.API.BaseURL = base

	if c.API.Timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("config: api.requests_per_second must not be negative")
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("config: storage.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("config: storage.redis_addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.SealKey != "" {
		if _, err := c.Storage.SealKeyBytes(); err != nil {
			return err
		}
	}
	return nil
}

// SealKeyBytes decodes SealKey. It returns nil when no key is configured.
func (s StorageConfig) SealKeyBytes() (*[32]byte, error) {
	if s.SealKey == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s.SealKey)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("config: storage.seal_key must be 64 hex characters")
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
