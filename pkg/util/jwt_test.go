package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	token, err := GenerateJWT("42", "ana", "admin", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("42", "ana", "admin", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestJWT_NonPositiveTTLUsesDefault(t *testing.T) {
	token, err := GenerateJWT("42", "ana", "admin", "secret", -time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.NoError(t, err)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(r))
}
