package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bunadmin/backend"
)

func TestHashPassword(t *testing.T) {
	hash, err := backend.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, backend.ComparePasswordAndHash("s3cret", hash))
	assert.ErrorIs(t, backend.ComparePasswordAndHash("wrong", hash), backend.ErrMismatchedHashAndPassword)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := backend.HashPassword("")
	assert.ErrorIs(t, err, backend.ErrNoEmptyString)
}

func TestComparePasswordMalformedHash(t *testing.T) {
	err := backend.ComparePasswordAndHash("s3cret", "not-a-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, backend.ErrMismatchedHashAndPassword)
}

func TestRandomPasswordHash(t *testing.T) {
	first, err := backend.RandomPasswordHash()
	require.NoError(t, err)
	second, err := backend.RandomPasswordHash()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Error(t, backend.ComparePasswordAndHash("", first))
}
