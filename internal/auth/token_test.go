// ABOUTME: Tests for JWT generation and verification
// ABOUTME: Covers round-trip, admin claim, expiry, and tampered tokens

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	token, err := v.Generate("alice", false, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.False(t, claims.Admin)
}

func TestJWTVerifier_AdminClaim(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	token, err := v.Generate("operator", true, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.True(t, claims.Admin)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	token, err := v.Generate("alice", false, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	v1 := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))
	v2 := NewJWTVerifier([]byte("other-secret-other-secret-other!"))

	token, err := v1.Generate("alice", false, time.Hour)
	require.NoError(t, err)

	_, err = v2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	_, err := v.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
