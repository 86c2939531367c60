package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file at the repository root.
const FileName = "locatio.yaml"

// Environment variables that override the file.
const (
	EnvLogLevel  = "LOCATIO_LOG_LEVEL"
	EnvLogFormat = "LOCATIO_LOG_FORMAT"
	EnvUserID    = "LOCATIO_USER_ID"
	EnvMaxRows   = "LOCATIO_MAX_ROWS"
)

var ErrInvalid = errors.New("invalid configuration")

// Config represents the top-level locatio.yaml configuration.
type Config struct {
	Owner      OwnerConfig   `yaml:"owner"`
	Fiscal     FiscalConfig  `yaml:"fiscal"`
	Properties []Property    `yaml:"properties,omitempty"`
	VAT        VATConfig     `yaml:"vat"`
	Reports    ReportsConfig `yaml:"reports"`
	Logging    LoggingConfig `yaml:"logging"`
}

// OwnerConfig identifies the landlord whose books these are.
type OwnerConfig struct {
	Name   string `yaml:"name"`
	UserID string `yaml:"user_id"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// Property is a rented unit. Property-scoped ledger accounts reference its ID.
type Property struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address,omitempty"`
}

// VATConfig controls VAT consistency checks on amounts.
type VATConfig struct {
	Enabled     bool    `yaml:"enabled"`
	DefaultRate float64 `yaml:"default_rate"`
}

// ReportsConfig bounds report generation.
type ReportsConfig struct {
	MaxRows int `yaml:"max_rows"`
}

// LoggingConfig selects the log level and output format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a locatio.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(ownerName, userID string) *Config {
	return &Config{
		Owner: OwnerConfig{
			Name:   ownerName,
			UserID: userID,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		VAT: VATConfig{
			Enabled:     false,
			DefaultRate: 20,
		},
		Reports: ReportsConfig{
			MaxRows: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables already set. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := getenv(EnvUserID); v != "" {
		c.Owner.UserID = v
	}
	if v := getenv(EnvMaxRows); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvMaxRows, v)
		}
		c.Reports.MaxRows = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := time.Parse("01-02", c.Fiscal.YearStart); err != nil {
		return fmt.Errorf("%w: fiscal.year_start %q is not MM-DD", ErrInvalid, c.Fiscal.YearStart)
	}
	if c.VAT.DefaultRate < 0 || c.VAT.DefaultRate > 100 {
		return fmt.Errorf("%w: vat.default_rate %v out of [0,100]", ErrInvalid, c.VAT.DefaultRate)
	}
	if c.Reports.MaxRows < 0 {
		return fmt.Errorf("%w: reports.max_rows %d is negative", ErrInvalid, c.Reports.MaxRows)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q is not text or json", ErrInvalid, c.Logging.Format)
	}
	seen := make(map[string]bool)
	for _, p := range c.Properties {
		if p.ID == "" || seen[p.ID] {
			return fmt.Errorf("%w: property id %q empty or duplicated", ErrInvalid, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Property returns the property with the given ID.
func (c *Config) Property(id string) (Property, bool) {
	for _, p := range c.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}
