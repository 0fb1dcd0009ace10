package authmodule

import (
	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/auth"
)

// RegisterRoutes registers all auth module routes
func (m *Module) RegisterRoutes(r *gin.Engine) {
	users := r.Group("/api/users")
	{
		users.POST("/signup", m.handleSignup(auth.RoleUser))
		users.POST("/login", m.handleLogin(auth.RoleUser))
		users.POST("/logout", m.handleLogout)
		users.GET("/me", m.authn.RequireRole(auth.RoleUser), m.handleProfile)
	}

	producers := r.Group("/api/producers")
	{
		producers.POST("/signup", m.handleSignup(auth.RoleProducer))
		producers.POST("/login", m.handleLogin(auth.RoleProducer))
		producers.POST("/logout", m.handleLogout)
		producers.GET("/me", m.authn.RequireRole(auth.RoleProducer), m.handleProfile)
	}
}
