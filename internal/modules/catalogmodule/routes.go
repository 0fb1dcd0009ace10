package catalogmodule

import (
	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/modules/authmodule"
)

// RegisterRoutes registers all catalog module routes
func (m *Module) RegisterRoutes(r *gin.Engine) {
	producer := authmodule.Authn().RequireRole(auth.RoleProducer)

	titles := r.Group("/api/titles")
	{
		titles.GET("", m.handleListTitles)
		titles.GET("/:id", m.handleGetTitle)
		titles.POST("", producer, m.handleCreateTitle)
		titles.DELETE("/:id", producer, m.handleDeleteTitle)

		titles.GET("/:id/episodes", m.handleListEpisodes)
		titles.GET("/:id/episodes/:order", m.handleGetEpisode)
		titles.POST("/:id/episodes", producer, m.handleAddEpisode)
		titles.DELETE("/:id/episodes/:episodeID", producer, m.handleDeleteEpisode)
	}
}
