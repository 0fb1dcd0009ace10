package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	token, err := svc.Issue("alice", RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, role, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, RoleUser, role)
}

func TestTokenCarriesRole(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	token, err := svc.Issue("studio", RoleProducer)
	require.NoError(t, err)

	_, role, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleProducer, role)
}

func TestTokenExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	token, err := svc.Issue("alice", RoleUser)
	require.NoError(t, err)

	// Just inside the window still verifies.
	clock.Advance(15*time.Minute - time.Second)
	_, _, err = svc.Verify(token)
	require.NoError(t, err)

	// At exactly the expiry instant the token is dead.
	clock.Advance(time.Second)
	_, _, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	issuer := NewTokenService([]byte("secret-a"), 15*time.Minute, clock)
	verifier := NewTokenService([]byte("secret-b"), 15*time.Minute, clock)

	token, err := issuer.Issue("alice", RoleUser)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenMalformed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJ1c2Vy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Verify(tc.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestTokenRejectsUnsignedAlgorithm(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	claims := Claims{
		Username: "mallory",
		UserType: string(RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenMissingExpiryIsMalformed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	// Correctly signed but structurally incomplete: no exp claim.
	claims := Claims{Username: "alice", UserType: string(RoleUser)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute, clock)

	claims := Claims{
		Username: "alice",
		UserType: "superadmin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
