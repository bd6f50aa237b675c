package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"unset", "", false, 42},
		{"valid", "100", true, 100},
		{"negative", "-10", true, -10},
		{"zero", "0", true, 0},
		{"not a number", "six", true, 42},
		{"float", "42.5", true, 42},
		{"empty", "", true, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			if tt.set {
				t.Setenv("WORKER_COUNT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsInt("WORKER_COUNT", 42))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  time.Duration
	}{
		{"unset", "", false, DefaultLockTimeout},
		{"milliseconds", "750ms", true, 750 * time.Millisecond},
		{"seconds", "30s", true, 30 * time.Second},
		{"compound", "1h30m45s", true, time.Hour + 30*time.Minute + 45*time.Second},
		{"microseconds", "500us", true, 500 * time.Microsecond},
		{"missing unit", "100", true, DefaultLockTimeout},
		{"garbage", "soon", true, DefaultLockTimeout},
		{"empty", "", true, DefaultLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			if tt.set {
				t.Setenv("LOCK_TIMEOUT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsDuration("LOCK_TIMEOUT", DefaultLockTimeout))
		})
	}
}

func TestGetEnv_EmptyIsNotUnset(t *testing.T) {
	clearEnvVars(t)
	assert.Equal(t, "fallback", getEnv("CATALOG_FILE", "fallback"))

	t.Setenv("CATALOG_FILE", "")
	assert.Empty(t, getEnv("CATALOG_FILE", "fallback"))
}

func TestLoad_DatabasePoolConfig(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantConns    int
		wantIdle     time.Duration
		wantLifetime time.Duration
	}{
		{
			name:         "defaults",
			wantConns:    DefaultDBMaxConns,
			wantIdle:     DefaultDBMaxConnIdleTime,
			wantLifetime: DefaultDBMaxConnLifetime,
		},
		{
			name:         "custom",
			env:          map[string]string{"DB_MAX_CONNS": "50", "DB_MAX_CONN_IDLE": "10m", "DB_MAX_CONN_LIFETIME": "1h"},
			wantConns:    50,
			wantIdle:     10 * time.Minute,
			wantLifetime: time.Hour,
		},
		{
			name:         "malformed values fall back",
			env:          map[string]string{"DB_MAX_CONNS": "lots", "DB_MAX_CONN_IDLE": "idle", "DB_MAX_CONN_LIFETIME": "forever"},
			wantConns:    DefaultDBMaxConns,
			wantIdle:     DefaultDBMaxConnIdleTime,
			wantLifetime: DefaultDBMaxConnLifetime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("API_KEY", "test-key")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantConns, cfg.DBMaxConns)
			assert.Equal(t, tt.wantIdle, cfg.DBMaxConnIdleTime)
			assert.Equal(t, tt.wantLifetime, cfg.DBMaxConnLifetime)
		})
	}
}
