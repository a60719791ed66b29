package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "device-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, deviceID, err := ExtractIDsFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "device-1", deviceID)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("user-1", "device-1", -time.Minute)
	require.NoError(t, err)

	_, _, err = ExtractIDsFromToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, _, err := ExtractIDsFromToken("not.a.token")
	assert.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	h1 := HashToken("abc")
	h2 := HashToken("abc")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashToken("abd"))
}
