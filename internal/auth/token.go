package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but its expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenMalformed covers every other verification failure:
	// garbage input, wrong signature, wrong algorithm, missing claims.
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// Claims is the session token payload.
type Claims struct {
	Username string `json:"username"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-SHA256 session tokens.
// Tokens are stateless: verification needs only the signing secret,
// no server-side session storage.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewTokenService returns a service signing with secret and issuing
// tokens valid for ttl. The clock is injectable so tests can advance
// time past expiry without sleeping.
func NewTokenService(secret []byte, ttl time.Duration, clock clockwork.Clock) *TokenService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{secret: secret, ttl: ttl, clock: clock}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding username to role for the configured TTL.
func (s *TokenService) Issue(username string, role Role) (string, error) {
	now := s.clock.Now().UTC()
	claims := Claims{
		Username: username,
		UserType: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded
// username and role. Expiry is checked against the injected clock
// rather than the library's wall clock, so ErrTokenExpired is only
// returned for tokens that passed signature verification.
func (s *TokenService) Verify(token string) (string, Role, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", "", ErrTokenMalformed
	}
	role := Role(claims.UserType)
	if claims.ExpiresAt == nil || claims.Username == "" || !role.Valid() {
		return "", "", ErrTokenMalformed
	}
	if !s.clock.Now().Before(claims.ExpiresAt.Time) {
		return "", "", ErrTokenExpired
	}
	return claims.Username, role, nil
}
