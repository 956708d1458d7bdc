package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CompareHashAndPassword(hash, "Secret123"))
	assert.False(t, CompareHashAndPassword(hash, "Secret124"))
	assert.False(t, CompareHashAndPassword(hash, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("Secret123")
	require.NoError(t, err)
	h2, err := HashPassword("Secret123")
	require.NoError(t, err)

	// Per-hash salt: same plaintext, different hashes, both verify.
	assert.NotEqual(t, h1, h2)
	assert.True(t, CompareHashAndPassword(h1, "Secret123"))
	assert.True(t, CompareHashAndPassword(h2, "Secret123"))
}

func TestCompareHashAndPassword_RejectsForeignHash(t *testing.T) {
	h, err := HashPassword("one")
	require.NoError(t, err)

	assert.False(t, CompareHashAndPassword(h, "two"))
	assert.False(t, CompareHashAndPassword("not a bcrypt hash", "one"))
}
