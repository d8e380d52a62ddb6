package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/carecost/internal/model"
)

const (
	DefaultLookupTimeout = 5 * time.Second
	DefaultCacheTTL      = 15 * time.Minute
	DefaultConcurrency   = 8
)

// Config holds all runtime configuration for a carecost run.
type Config struct {
	DSN       string
	LogFormat string // "text" or "json"
	LogLevel  string

	// Reference loads.
	FilePath    string
	Kind        string // model.KindFeeSchedule or model.KindGeoFactors
	Force       bool
	KeepStaging bool

	// Engine tuning, usually from the YAML file.
	FallbackTable string
	RangeSpread   float64
	Concurrency   int
	LookupTimeout time.Duration
	CacheTTL      time.Duration
	RedisAddr     string
}

// yamlConfig is the on-disk YAML structure. Pointers distinguish an absent
// key from a zero value.
type yamlConfig struct {
	FallbackTable *string        `yaml:"fallback_table"`
	RangeSpread   *float64       `yaml:"range_spread"`
	Concurrency   *int           `yaml:"concurrency"`
	LookupTimeout *time.Duration `yaml:"lookup_timeout"`
	CacheTTL      *time.Duration `yaml:"cache_ttl"`
	RedisAddr     *string        `yaml:"redis_addr"`
}

// New returns a Config with engine defaults set.
func New() *Config {
	return &Config{
		LogFormat:     "text",
		LogLevel:      "info",
		Kind:          model.KindFeeSchedule,
		Concurrency:   DefaultConcurrency,
		LookupTimeout: DefaultLookupTimeout,
		CacheTTL:      DefaultCacheTTL,
	}
}

// LoadFromFile reads a YAML config file and merges the keys it sets into c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.FallbackTable != nil {
		c.FallbackTable = *yc.FallbackTable
	}
	if yc.RangeSpread != nil {
		c.RangeSpread = *yc.RangeSpread
	}
	if yc.Concurrency != nil {
		c.Concurrency = *yc.Concurrency
	}
	if yc.LookupTimeout != nil {
		c.LookupTimeout = *yc.LookupTimeout
	}
	if yc.CacheTTL != nil {
		c.CacheTTL = *yc.CacheTTL
	}
	if yc.RedisAddr != nil {
		c.RedisAddr = *yc.RedisAddr
	}
	return c.validateEngine()
}

func (c *Config) validateEngine() error {
	if c.RangeSpread < 0 || c.RangeSpread >= 1 {
		return fmt.Errorf("range_spread must be in [0, 1), got %v", c.RangeSpread)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup_timeout must be positive, got %s", c.LookupTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// Validate checks the fields a reference load needs.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	if !slices.Contains(model.ReferenceKinds, c.Kind) {
		return fmt.Errorf("unknown reference kind %q", c.Kind)
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or CARECOST_DB_URL is required")
	}
	return nil
}
