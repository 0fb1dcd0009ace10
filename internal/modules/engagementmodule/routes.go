package engagementmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/middleware"
	"github.com/cinetrack/cinetrack/internal/modules/authmodule"
)

// RegisterRoutes registers all engagement module routes
func (m *Module) RegisterRoutes(r *gin.Engine) {
	user := authmodule.Authn().RequireRole(auth.RoleUser)

	titles := r.Group("/api/titles")
	{
		titles.POST("/:id/reviews", user, m.handleAddReview)
		titles.GET("/:id/reviews", m.handleListReviews)
	}

	reviews := r.Group("/api/reviews")
	{
		reviews.GET("/:id", m.handleGetReview)
		reviews.DELETE("/:id", user, m.handleDeleteReview)

		reviews.POST("/:id/comments", user, m.handleAddComment)
		reviews.GET("/:id/comments", m.handleListComments)

		reviews.POST("/:id/impressions", user, m.handleAddImpression)
		reviews.DELETE("/:id/impressions", user, m.handleRemoveImpression)
	}

	r.DELETE("/api/comments/:id", user, m.handleDeleteComment)
}

func (m *Module) handleAddReview(c *gin.Context) {
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
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
		Text   string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	review, err := m.manager.AddReview(c.Request.Context(), ident, titleID, req.Rating, req.Text)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (m *Module) handleListReviews(c *gin.Context) {
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := m.manager.ListReviewsByTitle(c.Request.Context(), titleID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (m *Module) handleGetReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	review, score, err := m.manager.GetReview(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review, "net_score": score})
}

func (m *Module) handleDeleteReview(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.DeleteReview(c.Request.Context(), ident, id); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

func (m *Module) handleAddComment(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	comment, err := m.manager.AddComment(c.Request.Context(), ident, reviewID, req.Text)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (m *Module) handleListComments(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := m.manager.ListComments(c.Request.Context(), reviewID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (m *Module) handleDeleteComment(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.DeleteComment(c.Request.Context(), ident, id); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (m *Module) handleAddImpression(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Value int `json:"value" binding:"required,oneof=1 -1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	impression, err := m.manager.AddImpression(c.Request.Context(), ident, reviewID, req.Value)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, impression)
}

func (m *Module) handleRemoveImpression(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.RemoveImpression(c.Request.Context(), ident, reviewID); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "impression removed"})
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
