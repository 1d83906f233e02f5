package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are strings like "1h" or "300s" so the file stays readable. Pointer
// fields distinguish "absent" from zero values.
type jsonConfig struct {
	DataDir          *string `json:"data_dir"`
	SessionTTL       *string `json:"session_ttl"`
	ResetTokenTTL    *string `json:"reset_token_ttl"`
	LockoutThreshold *int    `json:"lockout_threshold"`
	LockoutWindow    *string `json:"lockout_window"`
	LockoutDuration  *string `json:"lockout_duration"`
	BackupsKept      *int    `json:"backups_kept"`
	LogLevel         *string `json:"log_level"`
}

// parseJSON overlays cfg with values from the JSON file at path. An empty
// path means no JSON source is configured and is not an error.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.LockoutThreshold != nil {
		cfg.LockoutThreshold = *jc.LockoutThreshold
	}
	if jc.BackupsKept != nil {
		cfg.BackupsKept = *jc.BackupsKept
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}

	for _, d := range []struct {
		raw *string
		dst *time.Duration
		key string
	}{
		{jc.SessionTTL, &cfg.SessionTTL, "session_ttl"},
		{jc.ResetTokenTTL, &cfg.ResetTokenTTL, "reset_token_ttl"},
		{jc.LockoutWindow, &cfg.LockoutWindow, "lockout_window"},
		{jc.LockoutDuration, &cfg.LockoutDuration, "lockout_duration"},
	} {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("parse %s in %s: %w", d.key, path, err)
		}
		*d.dst = parsed
	}

	return nil
}
