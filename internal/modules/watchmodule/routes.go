package watchmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/middleware"
	"github.com/cinetrack/cinetrack/internal/modules/authmodule"
)

// RegisterRoutes registers all watch module routes
func (m *Module) RegisterRoutes(r *gin.Engine) {
	user := authmodule.Authn().RequireRole(auth.RoleUser)

	titles := r.Group("/api/titles", user)
	{
		titles.POST("/:id/progress", m.handleStartWatching)
		titles.GET("/:id/progress", m.handleGetProgress)
		titles.PUT("/:id/progress", m.handleUpdateProgress)
		titles.PUT("/:id/progress/review", m.handleAttachReview)
	}

	r.GET("/api/progress", user, m.handleListProgress)
}

func (m *Module) handleStartWatching(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	progress, err := m.manager.StartWatching(c.Request.Context(), ident, titleID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

func (m *Module) handleUpdateProgress(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status          string `json:"status" binding:"required,oneof=not_started active completed"`
		EpisodesWatched *int   `json:"episodes_watched" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	progress, err := m.manager.UpdateProgress(c.Request.Context(), ident, titleID,
		database.WatchStatus(req.Status), *req.EpisodesWatched)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (m *Module) handleAttachReview(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReviewID uint `json:"review_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	progress, err := m.manager.AttachReview(c.Request.Context(), ident, titleID, req.ReviewID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (m *Module) handleGetProgress(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	progress, err := m.manager.GetProgress(c.Request.Context(), ident, titleID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (m *Module) handleListProgress(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	progress, err := m.manager.ListProgress(c.Request.Context(), ident)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
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
