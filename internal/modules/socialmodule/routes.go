package socialmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/middleware"
	"github.com/cinetrack/cinetrack/internal/modules/authmodule"
)

// RegisterRoutes registers all social module routes
func (m *Module) RegisterRoutes(r *gin.Engine) {
	user := authmodule.Authn().RequireRole(auth.RoleUser)

	users := r.Group("/api/users")
	{
		users.POST("/:id/follow", user, m.handleFollow)
		users.DELETE("/:id/follow", user, m.handleUnfollow)
		users.GET("/:id/followers", m.handleFollowers)
		users.GET("/:id/following", m.handleFollowing)
	}
}

func (m *Module) handleFollow(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.Follow(c.Request.Context(), ident, targetID); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "following"})
}

func (m *Module) handleUnfollow(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.Unfollow(c.Request.Context(), ident, targetID); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (m *Module) handleFollowers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	users, err := m.manager.Followers(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": users})
}

func (m *Module) handleFollowing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	users, err := m.manager.Following(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": users})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierr.NewValidationError(name+" must be a positive integer", name).ToGinResponse(c)
		return 0, false
	}
	return uint(id), true
}
