package config

import (
	"os"
	"strconv"
	"strings"
)

// parseEnv overlays the TCHAT_* environment variables. Unparsable values
// are ignored so a stray variable cannot keep the server from starting with
// its configured defaults.
func parseEnv(cfg *Config) {
	if v := os.Getenv("TCHAT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("TCHAT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TCHAT_MAX_CONNECTIONS"); v != "" {
		if max, err := strconv.Atoi(v); err == nil {
			cfg.MaxConnections = max
		}
	}
	if v := os.Getenv("TCHAT_REQUIRE_AUTH"); v != "" {
		cfg.RequireAuth = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("TCHAT_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("TCHAT_SECRET"); v != "" {
		cfg.Secret = v
	}
}
