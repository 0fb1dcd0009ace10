package authmodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/middleware"
)

// handleSignup creates an account in the partition for role and opens
// a session immediately.
func (m *Module) handleSignup(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required,min=3,max=32"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
			return
		}

		ident, err := m.store.Signup(c.Request.Context(), role, req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrEmailTaken):
				apierr.NewConflictError("email already registered").ToGinResponse(c)
			case errors.Is(err, auth.ErrUsernameTaken):
				apierr.NewConflictError("username already registered").ToGinResponse(c)
			default:
				apierr.NewDatabaseError("signup", err).ToGinResponse(c)
			}
			return
		}

		token, err := m.tokens.Issue(ident.Username, ident.Role)
		if err != nil {
			apierr.NewDatabaseError("issue token", err).ToGinResponse(c)
			return
		}
		m.setSessionCookie(c, token)

		c.JSON(http.StatusCreated, gin.H{
			"id":       ident.ID,
			"username": ident.Username,
			"role":     ident.Role,
			"token":    token,
		})
	}
}

// handleLogin verifies credentials and opens a session. Unknown email
// and wrong password produce the same response.
func (m *Module) handleLogin(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
			return
		}

		ident, err := m.store.Login(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidLogin) {
				apierr.NewValidationError("invalid email or password", "").ToGinResponse(c)
			} else {
				apierr.NewDatabaseError("login", err).ToGinResponse(c)
			}
			return
		}

		token, err := m.tokens.Issue(ident.Username, ident.Role)
		if err != nil {
			apierr.NewDatabaseError("issue token", err).ToGinResponse(c)
			return
		}
		m.setSessionCookie(c, token)

		c.JSON(http.StatusOK, gin.H{
			"id":       ident.ID,
			"username": ident.Username,
			"role":     ident.Role,
			"token":    token,
		})
	}
}

// handleLogout clears the session cookie. Tokens are stateless, so
// an already-issued token stays valid until it expires; logout only
// removes it from the browser.
func (m *Module) handleLogout(c *gin.Context) {
	c.SetCookie(m.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// handleProfile returns the authenticated account's own record plus
// the sections its role cares about: a user sees their reviews and
// tracked titles, a producer sees the titles they publish.
func (m *Module) handleProfile(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	ctx := c.Request.Context()

	switch ident.Role {
	case auth.RoleProducer:
		var p database.Producer
		if err := m.db.WithContext(ctx).First(&p, ident.ID).Error; err != nil {
			m.respondProfileErr(c, err)
			return
		}
		var titles []database.Title
		if err := m.db.WithContext(ctx).Where("producer_id = ?", ident.ID).Find(&titles).Error; err != nil {
			apierr.NewDatabaseError("load titles", err).ToGinResponse(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         p.ID,
			"username":   p.Username,
			"role":       ident.Role,
			"email":      p.Email,
			"created_at": p.CreatedAt,
			"titles":     titles,
		})
	default:
		var u database.User
		if err := m.db.WithContext(ctx).First(&u, ident.ID).Error; err != nil {
			m.respondProfileErr(c, err)
			return
		}
		var reviews []database.Review
		if err := m.db.WithContext(ctx).Where("user_id = ?", ident.ID).Find(&reviews).Error; err != nil {
			apierr.NewDatabaseError("load reviews", err).ToGinResponse(c)
			return
		}
		var progress []database.WatchProgress
		if err := m.db.WithContext(ctx).Where("user_id = ?", ident.ID).Find(&progress).Error; err != nil {
			apierr.NewDatabaseError("load watch progress", err).ToGinResponse(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"role":       ident.Role,
			"email":      u.Email,
			"created_at": u.CreatedAt,
			"reviews":    reviews,
			"watching":   progress,
		})
	}
}

func (m *Module) respondProfileErr(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierr.NewNotFoundError("account").ToGinResponse(c)
		return
	}
	apierr.NewDatabaseError("load profile", err).ToGinResponse(c)
}

func (m *Module) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(m.cookieName, token, int(m.tokens.TTL().Seconds()), "/", "", false, true)
}
