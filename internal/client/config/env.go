package config

import (
	"os"
	"strconv"
)

// parseEnv overlays the TCHAT_* environment variables the client honors.
// Unparsable values are ignored.
func parseEnv(cfg *Config) {
	if v := os.Getenv("TCHAT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TCHAT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
}
