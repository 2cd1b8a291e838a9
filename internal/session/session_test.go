package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store, _ := newTestStore(t)
	return New(store, zerolog.Nop())
}

func TestSessionStartEnd(t *testing.T) {
	sess := newTestSession(t)

	_, ok := sess.Current()
	assert.False(t, ok)

	sess.Start(Credential{Access: "abc", Refresh: "def"})
	c, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "abc", c.Access)

	sess.End()
	_, ok = sess.Current()
	assert.False(t, ok)
}

func TestSessionStartInvalidEnds(t *testing.T) {
	sess := newTestSession(t)
	sess.Start(Credential{Access: "abc"})

	sess.Start(Credential{Refresh: "only"})
	_, ok := sess.Current()
	assert.False(t, ok)
}

func TestSessionSubscribe(t *testing.T) {
	sess := newTestSession(t)

	var events []Event
	cancel := sess.Subscribe(func(ev Event) { events = append(events, ev) })

	sess.Start(Credential{Access: "abc"})
	sess.End()

	require.Len(t, events, 2)
	assert.True(t, events[0].Active)
	assert.Equal(t, "abc", events[0].Credential.Access)
	assert.False(t, events[1].Active)

	cancel()
	sess.Start(Credential{Access: "xyz"})
	assert.Len(t, events, 2, "cancelled subscriber must not be notified")
}

func TestSessionToken(t *testing.T) {
	sess := newTestSession(t)

	_, err := sess.Token()
	assert.ErrorIs(t, err, ErrNoSession)

	sess.Start(Credential{Access: "abc", Refresh: "def"})
	tok, err := sess.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "def", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestCredentialClaims(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := issued.Add(5 * time.Minute)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "42",
		"user_id": 42,
		"iat":     issued.Unix(),
		"exp":     expires.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := Credential{Access: signed}.Claims()
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "42", claims.UserID)
	assert.True(t, claims.IssuedAt.Equal(issued))
	assert.True(t, claims.ExpiresAt.Equal(expires))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(expires.Add(time.Second)))
}

func TestCredentialClaimsOpaqueToken(t *testing.T) {
	_, err := Credential{Access: "abc"}.Claims()
	assert.Error(t, err)
	// Opaque tokens are still a valid session.
	assert.True(t, Credential{Access: "abc"}.Valid())
}
