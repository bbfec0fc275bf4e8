package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssueVerify(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	token := sessions.Issue()
	id, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSessionExpired(t *testing.T) {
	sessions := NewSessions("test-secret", -time.Minute)

	token := sessions.Issue()
	_, err := sessions.Verify(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionTampered(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)
	token := sessions.Issue()

	// Push the expiry forward without re-signing.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + ".9999999999." + parts[2]

	_, err := sessions.Verify(forged)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionWrongSecret(t *testing.T) {
	token := NewSessions("secret-a", time.Hour).Issue()

	_, err := NewSessions("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionMalformed(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	for _, token := range []string{"", "abc", "a.b", "a.b.c.d"} {
		_, err := sessions.Verify(token)
		assert.ErrorIs(t, err, ErrSessionInvalid, "token %q", token)
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("rahasia-admin")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("rahasia-admin", hash))
	assert.ErrorIs(t, VerifyPassword("salah", hash), ErrPasswordMismatch)
}
