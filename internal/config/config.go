// Package config provides configuration management for the set splitter.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values, matching the layout Magic Album expects.
const (
	DefaultCatalogURL        = "https://api.scryfall.com/bulk-data"
	DefaultDatasetType       = "default_cards"
	DefaultUserAgent         = "MagicAlbumSetSplitter/1.0"
	DefaultTimeoutSec        = 300
	DefaultRequestsPerSecond = 10
	DefaultOutputDir         = "Scryfall"
	DefaultSuffix            = "_.txt"
	DefaultMarkerPath        = "Scryfall.updated"
	DefaultLogLevel          = "info"
)

// Environment variables that override file values.
const (
	EnvOutputDir  = "SPLITTER_OUTPUT_DIR"
	EnvMarkerPath = "SPLITTER_MARKER_PATH"
	EnvLogLevel   = "SPLITTER_LOG_LEVEL"
	EnvUserAgent  = "SPLITTER_USER_AGENT"
)

// Configuration validation errors.
var (
	ErrMissingCatalogURL   = errors.New("source.catalog_url is required")
	ErrInvalidCatalogURL   = errors.New("source.catalog_url must be an absolute http(s) URL")
	ErrMissingDatasetType  = errors.New("source.dataset_type is required")
	ErrMissingUserAgent    = errors.New("source.user_agent is required")
	ErrInvalidTimeout      = errors.New("source.timeout_sec must be at least 1")
	ErrInvalidRequestRate  = errors.New("source.requests_per_second must be at least 1")
	ErrMissingOutputDir    = errors.New("output.dir is required")
	ErrMissingSuffix       = errors.New("output.suffix is required")
	ErrInvalidSuffix       = errors.New("output.suffix must not contain a path separator")
	ErrMissingMarkerPath   = errors.New("output.marker_path is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMarkerInsideOutputs = errors.New("output.marker_path must not be inside output.dir")
)

// Config represents the complete splitter configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig describes where the bulk data comes from.
type SourceConfig struct {
	CatalogURL        string `yaml:"catalog_url"`
	DatasetType       string `yaml:"dataset_type"`
	UserAgent         string `yaml:"user_agent"`
	TimeoutSec        int    `yaml:"timeout_sec"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

// OutputConfig defines where set files and the freshness marker go.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Suffix     string `yaml:"suffix"`
	MarkerPath string `yaml:"marker_path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			CatalogURL:        DefaultCatalogURL,
			DatasetType:       DefaultDatasetType,
			UserAgent:         DefaultUserAgent,
			TimeoutSec:        DefaultTimeoutSec,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Output: OutputConfig{
			Dir:        DefaultOutputDir,
			Suffix:     DefaultSuffix,
			MarkerPath: DefaultMarkerPath,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys missing from the
// file keep their default values. SPLITTER_* environment overrides are
// applied before validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from a dotenv file into the process
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overrides output and logging settings from SPLITTER_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}

	if v := os.Getenv(EnvMarkerPath); v != "" {
		c.Output.MarkerPath = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Source.UserAgent = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.CatalogURL == "" {
		return ErrMissingCatalogURL
	}

	u, err := url.Parse(c.Source.CatalogURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidCatalogURL, c.Source.CatalogURL)
	}

	if c.Source.DatasetType == "" {
		return ErrMissingDatasetType
	}

	if c.Source.UserAgent == "" {
		return ErrMissingUserAgent
	}

	if c.Source.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Source.RequestsPerSecond < 1 {
		return ErrInvalidRequestRate
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Output.Suffix == "" {
		return ErrMissingSuffix
	}

	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return ErrInvalidSuffix
	}

	if c.Output.MarkerPath == "" {
		return ErrMissingMarkerPath
	}

	if isWithin(c.Output.MarkerPath, c.Output.Dir) {
		return ErrMarkerInsideOutputs
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// isWithin reports whether path names dir itself or something below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// GetTimeout returns the HTTP client timeout.
func (s *SourceConfig) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// GetRequestInterval returns the minimum spacing between API requests.
func (s *SourceConfig) GetRequestInterval() time.Duration {
	if s.RequestsPerSecond < 1 {
		return 0
	}

	return time.Second / time.Duration(s.RequestsPerSecond)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Dataset: %s, Output: %s, Marker: %s}",
		c.Source.DatasetType,
		c.Output.Dir,
		c.Output.MarkerPath,
	)
}
