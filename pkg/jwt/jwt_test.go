package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-key", "secret-santa", 0)
	id := uuid.New()

	token, issued, err := m.GenerateSessionToken(id, "red-fox", "ORGANIZER")
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, issued.ExpiresAt.Sub(issued.IssuedAt.Time))

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "red-fox", claims.Handle)
	assert.Equal(t, "ORGANIZER", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestManager_ExpiresAfter24Hours(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager("test-key", "secret-santa", DefaultSessionTTL, WithClock(clock.Now))

	token, _, err := m.GenerateSessionToken(uuid.New(), "red-fox", "PARTICIPANT")
	require.NoError(t, err)

	clock.t = clock.t.Add(23 * time.Hour)
	_, err = m.Validate(token)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour + time.Second)
	_, err = m.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestManager_RejectsForeignTokens(t *testing.T) {
	m := NewManager("test-key", "secret-santa", time.Hour)
	other := NewManager("other-key", "secret-santa", time.Hour)
	otherIssuer := NewManager("test-key", "someone-else", time.Hour)

	token, _, err := other.GenerateSessionToken(uuid.New(), "red-fox", "ORGANIZER")
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.Error(t, err, "wrong signing key")

	token, _, err = otherIssuer.GenerateSessionToken(uuid.New(), "red-fox", "ORGANIZER")
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.Error(t, err, "wrong issuer")

	_, err = m.Validate("not-a-token")
	assert.Error(t, err)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "secret-santa",
			Subject:   uuid.NewString(),
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        uuid.NewString(),
		},
		Handle: "red-fox",
		Role:   "SUPER_ADMIN",
	})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(unsigned)
	assert.Error(t, err, "alg none")
}

func TestManager_RejectsIncompleteClaims(t *testing.T) {
	m := NewManager("test-key", "secret-santa", time.Hour)
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "secret-santa",
			Subject:   "not-a-uuid",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        uuid.NewString(),
		},
		Handle: "red-fox",
		Role:   "ORGANIZER",
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)

	_, err = m.Validate(signed)
	assert.Error(t, err)
}
