package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutDotenv())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "bunadmin", cfg.AdminTitle)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_DEBUG", "true")

	cfg, err := Load(WithoutDotenv())
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("ADMIN_TITLE=From File\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMIN_TITLE") })

	cfg, err := Load(WithEnvFiles(file))
	require.NoError(t, err)

	assert.Equal(t, "From File", cfg.AdminTitle)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "log level", key: "LOG_LEVEL", val: "loud"},
		{name: "address", key: "SERVER_ADDRESS", val: "not an address"},
		{name: "short secret", key: "ADMIN_SECRET_KEY", val: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(WithoutDotenv())
			assert.Error(t, err)
		})
	}
}
