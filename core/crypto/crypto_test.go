package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(16)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, decoded, 16)

	// 16 random bytes encode to 24 characters, within the 28-byte memo limit.
	assert.Len(t, salt, 24)
	assert.LessOrEqual(t, len([]byte(salt)), 28)
}

func TestGenerateSaltUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		salt, err := GenerateSalt(16)
		require.NoError(t, err)
		assert.False(t, seen[salt], "salts must not repeat")
		seen[salt] = true
	}
}

func TestGenerateSaltInvalidLength(t *testing.T) {
	_, err := GenerateSalt(0)
	assert.Error(t, err)
	_, err = GenerateSalt(-1)
	assert.Error(t, err)
}

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	require.NoError(t, err)

	decoded, err := hex.DecodeString(id)
	require.NoError(t, err)
	assert.Len(t, decoded, 16)
	assert.Len(t, id, 32)
}

func TestGenerateIDInvalidLength(t *testing.T) {
	_, err := GenerateID(0)
	assert.Error(t, err)
}
