package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oikonomos-dev/oikonomos/internal/currency"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

const (
	// FileName is the config file inside the data directory.
	FileName = "config.yaml"
	// EnvDataDir overrides the default data directory.
	EnvDataDir = "OIKONOMOS_DATA_DIR"
	// MemoryDatabase keeps the ledger in memory for the life of the process.
	MemoryDatabase = ":memory:"

	defaultDirName = ".oikonomos"
)

// Config represents the data directory's config.yaml.
type Config struct {
	Database string       `yaml:"database"` // file name relative to the data dir, or :memory:
	Currency string       `yaml:"currency"` // ISO 4217; sets the scale of typed amounts
	Log      LogConfig    `yaml:"log"`
	Report   ReportConfig `yaml:"report"`
	Import   ImportConfig `yaml:"import"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Style string `yaml:"style"` // glamour style: auto, dark, light, notty
}

// ImportConfig holds statement import defaults.
type ImportConfig struct {
	Format  string `yaml:"format"`
	Account string `yaml:"account,omitempty"` // account ID statements post to
}

// Load reads a config.yaml file from disk. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Database: "ledger.db",
		Currency: currency.Default,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			Style: "auto",
		},
		Import: ImportConfig{
			Format: "chase",
		},
	}
}

// Validate checks the values a hand-edited file could get wrong.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%w: config: database is required", model.ErrInvalidInput)
	}
	if _, err := currency.Lookup(c.Currency); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: config: log level: %w", model.ErrInvalidInput, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: config: log format must be console or json, got %q", model.ErrInvalidInput, c.Log.Format)
	}
	return nil
}

// DatabasePath resolves the database location against dataDir.
func (c *Config) DatabasePath(dataDir string) string {
	if c.Database == MemoryDatabase || filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(dataDir, c.Database)
}

// ResolveDataDir picks the data directory: flag, then $OIKONOMOS_DATA_DIR,
// then ~/.oikonomos.
func ResolveDataDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}

// LoadDir loads <dataDir>/config.yaml, falling back to defaults when the
// directory has not been initialized.
func LoadDir(dataDir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dataDir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
