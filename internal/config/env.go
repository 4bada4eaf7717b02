package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvAPIKey       = "API_KEY"
	EnvJWTSecret    = "PATRIMONIO_JWT_SECRET"
	EnvStoreDSN     = "PATRIMONIO_STORE_DSN"
)

// dotenvPath is loaded into the process environment when present. Variables
// already set are not overridden.
var dotenvPath = ".env"

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		cfg.StoreDSN = v
	}
	return nil
}
