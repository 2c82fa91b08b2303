package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "splitter.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
source:
  catalog_url: "https://api.scryfall.com/bulk-data"
  dataset_type: "all_cards"
  user_agent: "TestAgent/0.1"
  timeout_sec: 60
  requests_per_second: 5
output:
  dir: "out/sets"
  suffix: ".json"
  marker_path: "out/sets.updated"
logging:
  level: "debug"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.DatasetType != "all_cards" {
		t.Errorf("Expected dataset_type 'all_cards', got '%s'", cfg.Source.DatasetType)
	}

	if cfg.Output.Suffix != ".json" {
		t.Errorf("Expected suffix '.json', got '%s'", cfg.Output.Suffix)
	}

	if cfg.Source.GetTimeout() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.Source.GetTimeout())
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	configPath := createTempConfigFile(t, "output:\n  dir: \"elsewhere\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Output.Dir != "elsewhere" {
		t.Errorf("Expected dir 'elsewhere', got '%s'", cfg.Output.Dir)
	}

	if cfg.Output.MarkerPath != DefaultMarkerPath {
		t.Errorf("Expected default marker path, got '%s'", cfg.Output.MarkerPath)
	}

	if cfg.Source.CatalogURL != DefaultCatalogURL {
		t.Errorf("Expected default catalog URL, got '%s'", cfg.Source.CatalogURL)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/splitter.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	configPath := createTempConfigFile(t, "source:\n  timeout_sec: 0\n")

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Fatalf("Expected ErrInvalidTimeout, got %v", err)
	}
}

func TestLoadConfig_EnvOverridesBeforeValidation(t *testing.T) {
	configPath := createTempConfigFile(t, "output:\n  dir: \"\"\n")
	t.Setenv(EnvOutputDir, "from-env")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Output.Dir != "from-env" {
		t.Errorf("Expected from-env, got %s", cfg.Output.Dir)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"missing catalog", func(c *Config) { c.Source.CatalogURL = "" }, ErrMissingCatalogURL},
		{"relative catalog", func(c *Config) { c.Source.CatalogURL = "/bulk-data" }, ErrInvalidCatalogURL},
		{"ftp catalog", func(c *Config) { c.Source.CatalogURL = "ftp://example.com/x" }, ErrInvalidCatalogURL},
		{"missing dataset", func(c *Config) { c.Source.DatasetType = "" }, ErrMissingDatasetType},
		{"missing user agent", func(c *Config) { c.Source.UserAgent = "" }, ErrMissingUserAgent},
		{"zero timeout", func(c *Config) { c.Source.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"zero rate", func(c *Config) { c.Source.RequestsPerSecond = 0 }, ErrInvalidRequestRate},
		{"missing dir", func(c *Config) { c.Output.Dir = "" }, ErrMissingOutputDir},
		{"missing suffix", func(c *Config) { c.Output.Suffix = "" }, ErrMissingSuffix},
		{"suffix with slash", func(c *Config) { c.Output.Suffix = "/x.txt" }, ErrInvalidSuffix},
		{"missing marker", func(c *Config) { c.Output.MarkerPath = "" }, ErrMissingMarkerPath},
		{"marker inside dir", func(c *Config) { c.Output.MarkerPath = "Scryfall/marker" }, ErrMarkerInsideOutputs},
		{"marker is dir", func(c *Config) { c.Output.MarkerPath = "./Scryfall" }, ErrMarkerInsideOutputs},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfig_Validate_MarkerBesideDir(t *testing.T) {
	cfg := Default()
	cfg.Output.MarkerPath = "Scryfall.updated"
	cfg.Output.Dir = "Scryfall"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("sibling marker should be valid, got %v", err)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(EnvOutputDir, "/tmp/sets")
	t.Setenv(EnvMarkerPath, "/tmp/sets.updated")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvUserAgent, "EnvAgent/2.0")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Output.Dir != "/tmp/sets" {
		t.Errorf("Expected dir from env, got %s", cfg.Output.Dir)
	}

	if cfg.Output.MarkerPath != "/tmp/sets.updated" {
		t.Errorf("Expected marker from env, got %s", cfg.Output.MarkerPath)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected level from env, got %s", cfg.Logging.Level)
	}

	if cfg.Source.UserAgent != "EnvAgent/2.0" {
		t.Errorf("Expected user agent from env, got %s", cfg.Source.UserAgent)
	}
}

func TestLoadDotEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte(EnvOutputDir+"=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	// Registers cleanup so the variable set by godotenv does not leak.
	t.Setenv(EnvOutputDir, "")
	os.Unsetenv(EnvOutputDir)

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv(EnvOutputDir); got != "from-dotenv" {
		t.Errorf("Expected from-dotenv, got %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestSourceConfig_GetRequestInterval(t *testing.T) {
	src := SourceConfig{RequestsPerSecond: 10}
	if got := src.GetRequestInterval(); got != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", got)
	}

	src.RequestsPerSecond = 0
	if got := src.GetRequestInterval(); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Output.Dir = "saved-sets"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Output.Dir != "saved-sets" {
		t.Errorf("Expected saved-sets, got %s", loaded.Output.Dir)
	}
}
