package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tchat/internal/flagx"
	"github.com/dmitrijs2005/tchat/internal/timex"
)

// jsonConfig is the DTO for the JSON overlay file. Durations accept either
// strings like "10s" or integer nanoseconds. Pointer fields distinguish
// "absent" from zero values so the file may override any subset of settings.
type jsonConfig struct {
	Host              *string         `json:"host"`
	Port              *int            `json:"port"`
	ConnectTimeout    *timex.Duration `json:"connect_timeout"`
	ReconnectAttempts *int            `json:"reconnect_attempts"`
	ReconnectDelay    *timex.Duration `json:"reconnect_delay"`
	KeepaliveInterval *timex.Duration `json:"keepalive_interval"`
}

// parseJSON overlays values from the file named by -c/-config, if any.
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
	if j.ConnectTimeout != nil {
		cfg.ConnectTimeout = j.ConnectTimeout.Duration
	}
	if j.ReconnectAttempts != nil {
		cfg.ReconnectAttempts = *j.ReconnectAttempts
	}
	if j.ReconnectDelay != nil {
		cfg.ReconnectDelay = j.ReconnectDelay.Duration
	}
	if j.KeepaliveInterval != nil {
		cfg.KeepaliveInterval = j.KeepaliveInterval.Duration
	}
}
