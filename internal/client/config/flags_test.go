package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-s", "memory", "-f", "x.db", "-r", "redis:6380", "-l", "debug",
				"-log-file", "out.log", "-auth-latency", "250ms", "-search-latency=0s", "-secret-mode", "argon2"},
			expected: &Config{
				StorageDriver: "memory", SQLitePath: "x.db", RedisAddr: "redis:6380", LogLevel: "debug",
				LogFile: "out.log", AuthLatency: 250 * time.Millisecond, SearchLatency: 0, SecretMode: "argon2",
			},
		},
		{
			name:     "config file and unknown flags are ignored",
			args:     []string{"-c", "cfg.json", "-test.v", "-s", "redis"},
			expected: &Config{StorageDriver: "redis"},
		},
		{name: "bad duration", args: []string{"-auth-latency", "soon"}, wantErr: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg := &Config{}
			err := parseFlags(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
