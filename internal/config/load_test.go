package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for a test and returns a cleanup
// function restoring the previous values.
func setupEnv(t *testing.T, envVars map[string]string) func() {
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	for name, value := range envVars {
		require.NoError(t, os.Setenv(name, value), "Failed to set environment variable %s", name)
	}

	return func() {
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies that Load yields a runnable development
// configuration from a bare environment.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"TASKWELL_SERVER_PORT":      "",
		"TASKWELL_SERVER_LOG_LEVEL": "",
		"TASKWELL_DATABASE_URL":     "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, 1000, cfg.Server.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimitWindow)
	assert.NotEmpty(t, cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}

// TestLoadFromEnvironment verifies that TASKWELL_ variables override the
// defaults.
func TestLoadFromEnvironment(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"TASKWELL_SERVER_PORT":        "9090",
		"TASKWELL_SERVER_LOG_LEVEL":   "debug",
		"TASKWELL_SERVER_ENVIRONMENT": "production",
		"TASKWELL_DATABASE_URL":       "postgres://user:pass@db:5432/tasks",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, "postgres://user:pass@db:5432/tasks", cfg.Database.URL)
}

// TestLoadRejectsInvalidValues verifies validation failures surface as
// errors rather than silently producing a bad configuration.
func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "invalid log level",
			env:  map[string]string{"TASKWELL_SERVER_LOG_LEVEL": "verbose"},
		},
		{
			name: "invalid environment",
			env:  map[string]string{"TASKWELL_SERVER_ENVIRONMENT": "staging"},
		},
		{
			name: "port out of range",
			env:  map[string]string{"TASKWELL_SERVER_PORT": "70000"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.env)
			defer cleanup()

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
