package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
)

const identityKey = "identity"

// Authenticator gates routes on a verified session token bound to a
// specific role.
type Authenticator struct {
	tokens     *auth.TokenService
	store      *auth.CredentialStore
	cookieName string
}

func NewAuthenticator(tokens *auth.TokenService, store *auth.CredentialStore, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, store: store, cookieName: cookieName}
}

// RequireRole returns middleware that admits only requests carrying a
// valid token for the given role. On success the resolved identity is
// stored on the context for handlers to read via IdentityFrom.
//
// Failure modes are deliberate and distinct: a missing token and a
// valid token for the wrong role both get 401 (the caller could fix
// either by authenticating correctly), while expired and malformed
// tokens get 403 (the presented credential itself is bad).
func (a *Authenticator) RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := a.tokenFromRequest(c)
		if raw == "" {
			abort(c, apierr.NewMissingTokenError())
			return
		}

		username, tokenRole, err := a.tokens.Verify(raw)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				abort(c, apierr.NewTokenExpiredError())
			default:
				abort(c, apierr.NewTokenMalformedError(err))
			}
			return
		}

		if tokenRole != role {
			abort(c, apierr.NewRoleMismatchError(string(role)))
			return
		}

		ident, err := a.store.Resolve(c.Request.Context(), tokenRole, username)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownAccount) {
				abort(c, apierr.NewNotFoundError("account"))
			} else {
				abort(c, apierr.NewDatabaseError("resolve identity", err))
			}
			return
		}

		c.Set(identityKey, *ident)
		c.Next()
	}
}

// tokenFromRequest reads the session cookie first and falls back to a
// Bearer authorization header.
func (a *Authenticator) tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(a.cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// IdentityFrom returns the identity injected by RequireRole.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	ident, ok := v.(auth.Identity)
	return ident, ok
}

func abort(c *gin.Context, err *apierr.Error) {
	err.ToGinResponse(c)
	c.Abort()
}
