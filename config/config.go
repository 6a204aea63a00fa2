// ABOUTME: Application configuration stored under the XDG data directory
// ABOUTME: Loads JSON config, an optional .env file, and DEALDESK_* environment overrides
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/harperreed/dealdesk/models"
)

const (
	// AppName names the data directory and the charm KV database.
	AppName = "dealdesk"

	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	ConfigFileName = "config.json"
)

// Config holds user-level settings.
type Config struct {
	DatabasePath  string      `json:"database_path,omitempty"`
	LogLevel      string      `json:"log_level,omitempty"`
	User          models.User `json:"user"`
	UploadBaseURL string      `json:"upload_base_url,omitempty"`
	CharmHost     string      `json:"charm_host,omitempty"`
	AutoSync      bool        `json:"auto_sync"`

	path string
}

// DataDir returns the directory holding the database, config, and credentials.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultPath returns where the config file lives.
func DefaultPath() string {
	return filepath.Join(DataDir(), ConfigFileName)
}

// Default returns a config with every field filled in.
func Default() *Config {
	cfg := &Config{path: DefaultPath()}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(DataDir(), AppName+".db")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CharmHost == "" {
		c.CharmHost = DefaultCharmHost
	}
	if c.UploadBaseURL == "" {
		c.UploadBaseURL = "charm://" + AppName
	}
	if c.User.UUID == "" {
		c.User.UUID = uuid.NewString()
	}
	if c.User.Name == "" {
		c.User.Name = os.Getenv("USER")
	}
}

// Load reads the config at path (DefaultPath when empty). A missing file yields defaults.
// A .env in the working directory is loaded first; real environment variables win over it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.path = path
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DEALDESK_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("DEALDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DEALDESK_USER_NAME"); v != "" {
		c.User.Name = v
	}
	if v := os.Getenv("DEALDESK_USER_UUID"); v != "" {
		c.User.UUID = v
	}
	if v := os.Getenv("DEALDESK_UPLOAD_BASE_URL"); v != "" {
		c.UploadBaseURL = v
	}
	if v := os.Getenv("CHARM_HOST"); v != "" {
		c.CharmHost = v
	}
	if v := os.Getenv("DEALDESK_AUTO_SYNC"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEALDESK_AUTO_SYNC %q: %w", v, err)
		}
		c.AutoSync = enabled
	}
	return nil
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// Save writes the config with owner-only permissions.
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
