package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects where and how tasks are persisted
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level"`
}

var (
	validBackends = []string{"json", "sqlite", "memory"}
	validLevels   = []string{"debug", "info", "warn", "error"}
)

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "json",
			Path:    "tasks.json",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Path returns the standard config file location
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tasks", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		// No config file, return defaults
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks and normalizes the configuration values
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if !contains(validBackends, c.Storage.Backend) {
		return fmt.Errorf("invalid storage backend %q: must be one of %s", c.Storage.Backend, strings.Join(validBackends, ", "))
	}

	if strings.TrimSpace(c.Storage.Path) == "" && c.Storage.Backend != "memory" {
		return fmt.Errorf("storage path cannot be empty")
	}
	c.Storage.Path = ExpandPath(strings.TrimSpace(c.Storage.Path))

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if !contains(validLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.Log.Level, strings.Join(validLevels, ", "))
	}

	return nil
}

// ExpandPath expands ~ to the home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := c.Encode(f); err != nil {
		return err
	}

	return f.Close()
}

// Encode writes the configuration as TOML
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
