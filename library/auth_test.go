package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	require.NoError(t, CheckPassword(hash, "s3cret"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrUnauthorized)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("   ")
	require.Error(t, err)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	err := CheckPassword("not-a-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
