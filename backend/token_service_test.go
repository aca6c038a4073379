package backend

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *AdminUser {
	return &AdminUser{
		ID:       uuid.MustParse("3a8f2c1e-9a1b-4bfa-8a55-3f1f2f8f0c11"),
		Username: "root",
		Role:     RoleEditor,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService([]byte("0123456789abcdef"), time.Hour, "bunadmin", "admin")

	token, err := ts.Generate(testUser())
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, RoleEditor, claims.Role)
	assert.Equal(t, "3a8f2c1e-9a1b-4bfa-8a55-3f1f2f8f0c11", claims.Subject)
	assert.Equal(t, "bunadmin", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"admin"}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	ts := NewTokenService([]byte("0123456789abcdef"), time.Minute, "bunadmin")
	ts.now = func() time.Time { return now }

	token, err := ts.Generate(testUser())
	require.NoError(t, err)

	ts.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenRejected(t *testing.T) {
	ts := NewTokenService([]byte("0123456789abcdef"), time.Hour, "bunadmin", "admin")
	token, err := ts.Generate(testUser())
	require.NoError(t, err)

	tests := []struct {
		name    string
		service *TokenService
		token   string
	}{
		{name: "garbage", service: ts, token: "not.a.token"},
		{name: "other key", service: NewTokenService([]byte("fedcba9876543210"), time.Hour, "bunadmin", "admin"), token: token},
		{name: "other issuer", service: NewTokenService([]byte("0123456789abcdef"), time.Hour, "other", "admin"), token: token},
		{name: "other audience", service: NewTokenService([]byte("0123456789abcdef"), time.Hour, "bunadmin", "api"), token: token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.service.Validate(tt.token)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrTokenExpired)
		})
	}
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	ts := NewTokenService([]byte("0123456789abcdef"), time.Hour, "")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "root"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.Error(t, err)
}

func TestGenerateNilUser(t *testing.T) {
	ts := NewTokenService([]byte("0123456789abcdef"), 0, "")

	_, err := ts.Generate(nil)
	assert.Error(t, err)
	assert.Equal(t, 24*time.Hour, ts.expiration)
}
