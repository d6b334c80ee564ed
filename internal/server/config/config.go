// Package config handles configuration for the server component: defaults,
// JSON file overlay, environment variables, and command-line flags, applied
// in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
)

// Config holds runtime settings for the tchat server.
//
// ConnectionTimeout bounds each read while a connection is still in its
// handshake; ReadTimeout bounds reads from registered users, so a client
// must chat or ping within it to stay connected. WriteTimeout bounds every
// frame write.
//
// DatabaseDSN selects the account backend: empty keeps accounts in memory,
// a PostgreSQL DSN persists them via pgx. Secret is the process-wide pepper
// mixed into password digests; override it in any real deployment.
type Config struct {
	Host              string
	Port              int
	MaxConnections    int
	RequireAuth       bool
	ConnectionTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration

	DatabaseDSN string
	Secret      string
	TokenTTL    time.Duration

	MessageBurst int
	MessageRate  float64
}

// LoadDefaults populates Config with the development defaults. The secret
// is insecure by definition and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Host = "0.0.0.0"
	c.Port = 8080
	c.MaxConnections = 100
	c.RequireAuth = false
	c.ConnectionTimeout = 30 * time.Second
	c.ReadTimeout = 60 * time.Second
	c.WriteTimeout = 10 * time.Second
	c.DatabaseDSN = ""
	c.Secret = "tchat-secret-pepper-2024"
	c.TokenTTL = 24 * time.Hour
	c.MessageBurst = 15
	c.MessageRate = 10
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

// Validate fails fast on settings that would only surface once sockets are
// already open.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", common.ErrInvalidConfiguration, c.Port)
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("%w: max connections must be positive", common.ErrInvalidConfiguration)
	}
	if c.ConnectionTimeout <= 0 || c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", common.ErrInvalidConfiguration)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: token TTL must be positive", common.ErrInvalidConfiguration)
	}
	if c.MessageBurst <= 0 || c.MessageRate <= 0 {
		return fmt.Errorf("%w: rate limits must be positive", common.ErrInvalidConfiguration)
	}
	if c.RequireAuth && c.Secret == "" {
		return fmt.Errorf("%w: auth requires a non-empty secret", common.ErrInvalidConfiguration)
	}
	return nil
}
