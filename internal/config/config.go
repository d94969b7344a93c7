// Package config handles the XDG configuration directory, file paths and the
// TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// SettingsFile names the Firebase project settings file.
	SettingsFile = "config.toml"

	// TokenFile names the stored identity session file.
	TokenFile = "token.json"

	// SessionFile names the persisted session state (active list, sort
	// key, undo buffer).
	SessionFile = "session.json"
)

// Settings holds the Firebase project coordinates read from config.toml.
type Settings struct {
	ProjectID string `toml:"project_id"`
	APIKey    string `toml:"api_key"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdeck or $HOME/.config/taskdeck.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the TOML settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the path to the persisted session state file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSettings checks if the settings file exists.
func (c *Config) HasSettings() bool {
	_, err := os.Stat(c.SettingsPath())
	return err == nil
}

// HasToken checks if the session token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the session token file.
func (c *Config) RemoveToken() error {
	err := os.Remove(c.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadSettings reads and validates config.toml.
func (c *Config) LoadSettings() (Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(c.SettingsPath(), &s); err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	if s.ProjectID == "" {
		return Settings{}, fmt.Errorf("%s: project_id is required", SettingsFile)
	}
	if s.APIKey == "" {
		return Settings{}, fmt.Errorf("%s: api_key is required", SettingsFile)
	}
	return s, nil
}
