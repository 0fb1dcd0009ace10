package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
)

type authFixture struct {
	router *gin.Engine
	tokens *auth.TokenService
	store  *auth.CredentialStore
	clock  *clockwork.FakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.User{}, &database.Producer{}))

	clock := clockwork.NewFakeClock()
	tokens := auth.NewTokenService([]byte("test-secret"), 15*time.Minute, clock)
	store := auth.NewCredentialStore(db, 4)
	authn := NewAuthenticator(tokens, store, "auth_token")

	router := gin.New()
	router.GET("/user-only", authn.RequireRole(auth.RoleUser), func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": ident.Username})
	})
	router.GET("/producer-only", authn.RequireRole(auth.RoleProducer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &authFixture{router: router, tokens: tokens, store: store, clock: clock}
}

func (f *authFixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequireRoleMissingToken(t *testing.T) {
	f := newAuthFixture(t)
	w := f.get("/user-only", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleHappyPath(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.store.Signup(context.Background(), auth.RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	token, err := f.tokens.Issue("alice", auth.RoleUser)
	require.NoError(t, err)

	w := f.get("/user-only", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestRequireRoleBearerHeaderFallback(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.store.Signup(context.Background(), auth.RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	token, err := f.tokens.Issue("alice", auth.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.store.Signup(context.Background(), auth.RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	token, err := f.tokens.Issue("alice", auth.RoleUser)
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)
	w := f.get("/user-only", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestRequireRoleMalformedToken(t *testing.T) {
	f := newAuthFixture(t)
	w := f.get("/user-only", "definitely-not-a-jwt")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MALFORMED")
}

func TestRequireRoleRoleMismatch(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.store.Signup(context.Background(), auth.RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	// A perfectly valid user token gets no access to producer routes.
	token, err := f.tokens.Issue("alice", auth.RoleUser)
	require.NoError(t, err)

	w := f.get("/producer-only", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ROLE_MISMATCH")
}

func TestRequireRoleDeletedAccount(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.tokens.Issue("ghost", auth.RoleUser)
	require.NoError(t, err)

	w := f.get("/user-only", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
