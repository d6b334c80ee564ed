// Package config handles configuration for the client component: defaults,
// JSON file overlay, environment variables, and command-line flags, applied
// in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
)

// Config holds runtime settings for the tchat client.
type Config struct {
	Host string
	Port int

	ConnectTimeout    time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	KeepaliveInterval time.Duration
}

// LoadDefaults populates Config with the development defaults.
func (c *Config) LoadDefaults() {
	c.Host = "localhost"
	c.Port = 8080
	c.ConnectTimeout = 10 * time.Second
	c.ReconnectAttempts = 3
	c.ReconnectDelay = 2 * time.Second
	c.KeepaliveInterval = 30 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying an
// optional JSON file, environment variables, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Addr returns the host:port the client should dial.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: empty host", common.ErrInvalidConfiguration)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", common.ErrInvalidConfiguration, c.Port)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", common.ErrInvalidConfiguration)
	}
	return nil
}
