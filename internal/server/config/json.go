package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tchat/internal/flagx"
	"github.com/dmitrijs2005/tchat/internal/timex"
)

// jsonConfig is the DTO for the JSON overlay file. Durations accept either
// strings like "30s" or integer nanoseconds. Pointer fields distinguish
// "absent" from zero values so the file may override any subset of settings.
type jsonConfig struct {
	Host              *string         `json:"host"`
	Port              *int            `json:"port"`
	MaxConnections    *int            `json:"max_connections"`
	RequireAuth       *bool           `json:"require_auth"`
	ConnectionTimeout *timex.Duration `json:"connection_timeout"`
	ReadTimeout       *timex.Duration `json:"read_timeout"`
	WriteTimeout      *timex.Duration `json:"write_timeout"`
	DatabaseDSN       *string         `json:"database_dsn"`
	Secret            *string         `json:"secret"`
	TokenTTL          *timex.Duration `json:"token_ttl"`
	MessageBurst      *int            `json:"message_burst"`
	MessageRate       *float64        `json:"message_rate"`
}

// parseJSON overlays values from the file named by -c/-config, if any.
// A missing flag means no file is loaded; an unreadable or invalid file is
// a startup failure.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	j := &jsonConfig{}
	if err := json.Unmarshal(raw, j); err != nil {
		panic(err)
	}

	if j.Host != nil {
		cfg.Host = *j.Host
	}
	if j.Port != nil {
		cfg.Port = *j.Port
	}
	if j.MaxConnections != nil {
		cfg.MaxConnections = *j.MaxConnections
	}
	if j.RequireAuth != nil {
		cfg.RequireAuth = *j.RequireAuth
	}
	if j.ConnectionTimeout != nil {
		cfg.ConnectionTimeout = j.ConnectionTimeout.Duration
	}
	if j.ReadTimeout != nil {
		cfg.ReadTimeout = j.ReadTimeout.Duration
	}
	if j.WriteTimeout != nil {
		cfg.WriteTimeout = j.WriteTimeout.Duration
	}
	if j.DatabaseDSN != nil {
		cfg.DatabaseDSN = *j.DatabaseDSN
	}
	if j.Secret != nil {
		cfg.Secret = *j.Secret
	}
	if j.TokenTTL != nil {
		cfg.TokenTTL = j.TokenTTL.Duration
	}
	if j.MessageBurst != nil {
		cfg.MessageBurst = *j.MessageBurst
	}
	if j.MessageRate != nil {
		cfg.MessageRate = *j.MessageRate
	}
}
