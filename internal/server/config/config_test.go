package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, 100, c.MaxConnections)
	assert.False(t, c.RequireAuth)
	assert.Equal(t, 30*time.Second, c.ConnectionTimeout)
	assert.Equal(t, 60*time.Second, c.ReadTimeout)
	assert.Equal(t, 10*time.Second, c.WriteTimeout)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 15, c.MessageBurst)
	assert.Equal(t, float64(10), c.MessageRate)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, ok: true},
		{name: "zero port", mutate: func(c *Config) { c.Port = 0 }, ok: false},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, ok: false},
		{name: "zero max connections", mutate: func(c *Config) { c.MaxConnections = 0 }, ok: false},
		{name: "negative read timeout", mutate: func(c *Config) { c.ReadTimeout = -time.Second }, ok: false},
		{name: "zero write timeout", mutate: func(c *Config) { c.WriteTimeout = 0 }, ok: false},
		{name: "zero token ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, ok: false},
		{name: "zero burst", mutate: func(c *Config) { c.MessageBurst = 0 }, ok: false},
		{name: "auth without secret", mutate: func(c *Config) { c.RequireAuth = true; c.Secret = "" }, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
			}
		})
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("TCHAT_PORT", "9100")
	t.Setenv("TCHAT_HOST", "127.0.0.1")
	t.Setenv("TCHAT_MAX_CONNECTIONS", "7")
	t.Setenv("TCHAT_REQUIRE_AUTH", "TRUE")
	t.Setenv("TCHAT_SECRET", "s3cret")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 9100, c.Port)
	assert.Equal(t, "127.0.0.1", c.Host)
	assert.Equal(t, 7, c.MaxConnections)
	assert.True(t, c.RequireAuth)
	assert.Equal(t, "s3cret", c.Secret)
}

func TestParseEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("TCHAT_PORT", "not-a-number")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 8080, c.Port)
}

func TestParseJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{"port": 9200, "require_auth": true, "read_timeout": "45s", "message_burst": 20}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"tchat", "server", "-c", path}

	c := &Config{}
	c.LoadDefaults()
	parseJSON(c)

	assert.Equal(t, 9200, c.Port)
	assert.True(t, c.RequireAuth)
	assert.Equal(t, 45*time.Second, c.ReadTimeout)
	assert.Equal(t, 20, c.MessageBurst)
	// Untouched settings keep their defaults.
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 10*time.Second, c.WriteTimeout)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"tchat", "server", "-p", "9300", "-auth", "-m", "3"}

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, 9300, c.Port)
	assert.True(t, c.RequireAuth)
	assert.Equal(t, 3, c.MaxConnections)
}
