package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; every one that exists is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE files into the process environment.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", p)
	}
}

// Getenv is an environment lookup; nil means os.Getenv.
type Getenv func(key string) string

func firstEnv(getenv Getenv, keys ...string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}
