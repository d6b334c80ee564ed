package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		known []string
		want  []string
	}{
		{
			name:  "separated value",
			args:  []string{"-p", "9000", "-d", "dsn"},
			known: []string{"-p"},
			want:  []string{"-p", "9000"},
		},
		{
			name:  "equals form",
			args:  []string{"--port=9000", "-d", "dsn"},
			known: []string{"--port"},
			want:  []string{"--port=9000"},
		},
		{
			name:  "order preserved across forms",
			args:  []string{"--config=a.json", "-c", "b.json", "-x", "1"},
			known: []string{"-c", "--config"},
			want:  []string{"--config=a.json", "-c", "b.json"},
		},
		{
			name:  "unknown flags dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			known: []string{"-c"},
			want:  []string{},
		},
		{
			name:  "trailing flag without value",
			args:  []string{"-c"},
			known: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "flag followed by another flag",
			args:  []string{"-c", "-v"},
			known: []string{"-c"},
			want:  []string{"-c"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Select(tc.args, tc.known))
		})
	}
}

func TestPositionals(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		valueFlags []string
		want       []string
	}{
		{
			name:       "mode and port survive",
			args:       []string{"server", "-m", "5", "9000"},
			valueFlags: []string{"-m"},
			want:       []string{"server", "9000"},
		},
		{
			name:       "bool flag does not eat the next arg",
			args:       []string{"server", "-auth", "9000"},
			valueFlags: []string{"-m"},
			want:       []string{"server", "9000"},
		},
		{
			name:       "equals form skipped",
			args:       []string{"client", "--port=9000", "example.com"},
			valueFlags: []string{},
			want:       []string{"client", "example.com"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Positionals(tc.args, tc.valueFlags))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"tchat", "server", "-c", "conf.json", "-p", "9000"}
	assert.Equal(t, "conf.json", ConfigFilePath())

	os.Args = []string{"tchat", "server", "-p", "9000"}
	assert.Equal(t, "", ConfigFilePath())
}
