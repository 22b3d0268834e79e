package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("sweetheart123")
	require.NoError(t, err)
	require.NotEqual(t, "sweetheart123", hash)

	require.True(t, VerifyPassword(hash, "sweetheart123"))
	require.False(t, VerifyPassword(hash, "Sweetheart123"))
}

func TestGenerateTokenLengthAndUniqueness(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}

func TestRandomStringUsesCharset(t *testing.T) {
	const charset = "AB12"

	s, err := RandomString(charset, 64)
	require.NoError(t, err)
	require.Len(t, s, 64)
	for _, r := range s {
		require.Contains(t, charset, string(r))
	}
}
