package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with PASSVAULT_* environment variables. A .env file
// in the working directory is loaded first when present; existing variables
// are not overwritten by it.
func parseEnv(cfg *Config) error {
	// godotenv.Load errors when the file is missing, which is the normal case.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
