// Package config handles reading and writing ~/.ringcheck/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Views   ViewsConfig   `yaml:"views"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig describes how to reach the remote lookup API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// AuthConfig holds client-side validation policy for login and signup.
type AuthConfig struct {
	PasswordMinLength int    `yaml:"password_min_length"`
	DefaultRegion     string `yaml:"default_region"` // ISO country code used to parse local numbers
}

// ViewsConfig controls how much data each view asks for and shows.
type ViewsConfig struct {
	TopContactsLimit int `yaml:"top_contacts_limit"`
	SpamPageSize     int `yaml:"spam_page_size"`
}

// StorageConfig locates the persistent session store.
type StorageConfig struct {
	SessionDB string `yaml:"session_db"` // relative paths resolve against the config dir
}

// LogConfig controls the JSONL event log.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"` // zerolog level name
}

const (
	configDir  = ".ringcheck"
	configFile = "config.yaml"

	apiURLEnvVar = "RINGCHECK_API_URL"
	homeEnvVar   = "RINGCHECK_HOME"
)

// Dir returns the directory holding config, session store and log.
// RINGCHECK_HOME wins over the user's home directory.
func Dir() (string, error) {
	if dir := GetEnv(homeEnvVar, ""); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ReadConfig reads config.yaml from dir.
// Returns an error if the file is not found or YAML is malformed.
// Fields missing from the file keep their default values.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in dir, creating dir if needed.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load reads the config from dir, falling back to defaults when the file
// does not exist, and applies environment overrides.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}
	cfg.applyEnv()
	return cfg, nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000/api",
			Timeout: 15,
		},
		Auth: AuthConfig{
			PasswordMinLength: 5,
			DefaultRegion:     "IN",
		},
		Views: ViewsConfig{
			TopContactsLimit: 10,
			SpamPageSize:     15,
		},
		Storage: StorageConfig{
			SessionDB: "session.db",
		},
		Log: LogConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.API.Timeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.Timeout) * time.Second
}

// SessionDBPath resolves the session store path against dir.
func (c *Config) SessionDBPath(dir string) string {
	if filepath.IsAbs(c.Storage.SessionDB) {
		return c.Storage.SessionDB
	}
	return filepath.Join(dir, c.Storage.SessionDB)
}

func (c *Config) applyEnv() {
	c.API.BaseURL = GetEnv(apiURLEnvVar, c.API.BaseURL)
}

// GetEnv returns the value of envVar, or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
