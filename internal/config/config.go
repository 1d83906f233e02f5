// Package config holds runtime settings for the PassVault engine and CLI.
//
// Sources are applied in order, later ones winning:
//  1. built-in defaults
//  2. an optional JSON config file
//  3. environment variables (optionally loaded from a .env file first)
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds every tunable of the engine. Durations are absolute expiries
// and windows; none of them slide with activity.
type Config struct {
	// DataDir is the root for key material, identity store, vault files
	// and backups.
	DataDir string `env:"PASSVAULT_DATA_DIR"`

	SessionTTL    time.Duration `env:"PASSVAULT_SESSION_TTL"`
	ResetTokenTTL time.Duration `env:"PASSVAULT_RESET_TOKEN_TTL"`

	LockoutThreshold int           `env:"PASSVAULT_LOCKOUT_THRESHOLD"`
	LockoutWindow    time.Duration `env:"PASSVAULT_LOCKOUT_WINDOW"`
	LockoutDuration  time.Duration `env:"PASSVAULT_LOCKOUT_DURATION"`

	BackupsKept int `env:"PASSVAULT_BACKUPS_KEPT"`

	LogLevel string `env:"PASSVAULT_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".passvault")
	c.SessionTTL = time.Hour
	c.ResetTokenTTL = 30 * time.Minute
	c.LockoutThreshold = 5
	c.LockoutWindow = 300 * time.Second
	c.LockoutDuration = 300 * time.Second
	c.BackupsKept = 5
	c.LogLevel = "info"
}

// Load constructs a Config: defaults, then the JSON file at jsonPath (if
// non-empty), then environment variables.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Derived on-disk layout under DataDir.

func (c *Config) IdentityKeyFile() string { return filepath.Join(c.DataDir, "identity.key") }
func (c *Config) VaultKeyFile() string    { return filepath.Join(c.DataDir, "vault.key") }
func (c *Config) IdentityFile() string    { return filepath.Join(c.DataDir, "identities.dat") }
func (c *Config) VaultDir() string        { return filepath.Join(c.DataDir, "vault") }
func (c *Config) BackupDir() string       { return filepath.Join(c.DataDir, "backups") }
