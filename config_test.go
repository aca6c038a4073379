package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "empty",
			in:   Config{},
			want: DefaultConfig(),
		},
		{
			name: "trailing slash",
			in:   Config{BaseURL: " /backoffice/ ", Title: "Ops"},
			want: Config{BaseURL: "/backoffice", Title: "Ops", SessionCookie: "session_id", SessionExpiration: 24 * time.Hour},
		},
		{
			name: "missing leading slash",
			in:   Config{BaseURL: "manage/users", SessionCookie: "sid", SessionExpiration: time.Hour},
			want: Config{BaseURL: "/manage/users", Title: "Admin", SessionCookie: "sid", SessionExpiration: time.Hour},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ADMIN_BASE_URL", "/ops")
	t.Setenv("ADMIN_TITLE", "Operations")
	t.Setenv("ADMIN_SESSION_EXPIRATION", "2h")
	t.Setenv("ADMIN_SECURE_COOKIES", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/ops", cfg.BaseURL)
	assert.Equal(t, "Operations", cfg.Title)
	assert.Equal(t, "session_id", cfg.SessionCookie)
	assert.Equal(t, 2*time.Hour, cfg.SessionExpiration)
	assert.True(t, cfg.SecureCookies)
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("ADMIN_SESSION_EXPIRATION", "forever")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}
