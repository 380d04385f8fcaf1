package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret", "astralsaints", time.Hour)

	token, expiresAt, err := m.Issue("p-1", "guest")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.PlayerID)
	assert.Equal(t, "guest", claims.Name)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("other", "astralsaints", time.Hour).Issue("p-1", "guest")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "astralsaints", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", "astralsaints", time.Minute)
	token, _, err := m.Issue("p-1", "guest")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsIssuer(t *testing.T) {
	token, _, err := NewTokenManager("secret", "elsewhere", time.Hour).Issue("p-1", "guest")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "astralsaints", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", "astralsaints", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
