package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "verigate-test")

	token, err := svc.GenerateAccessToken("ops-user", "portal", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-user", claims.CallerID)
	assert.Equal(t, "portal", claims.ClientID)
	assert.Equal(t, "verigate-test", claims.Issuer)
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "verigate-test")

	token, err := svc.GenerateAccessToken("ops-user", "portal", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTServiceRejectsWrongKey(t *testing.T) {
	issuing := NewJWTService("key-a", "verigate-test")
	validating := NewJWTService("key-b", "verigate-test")

	token, err := issuing.GenerateAccessToken("ops-user", "portal", time.Minute)
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	assert.Error(t, err)
}
