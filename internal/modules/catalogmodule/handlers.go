package catalogmodule

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/middleware"
)

func (m *Module) handleCreateTitle(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}

	var req struct {
		Name      string    `json:"name" binding:"required"`
		Kind      string    `json:"kind" binding:"required,oneof=movie series"`
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date" binding:"required"`
		Duration  int       `json:"duration" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	title, err := m.manager.CreateTitle(c.Request.Context(), ident, req.Name,
		database.TitleKind(req.Kind), req.StartDate, req.EndDate, req.Duration)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

func (m *Module) handleListTitles(c *gin.Context) {
	titles, err := m.manager.ListTitles(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

func (m *Module) handleGetTitle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	title, episodes, err := m.manager.GetTitle(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "episodes": episodes})
}

func (m *Module) handleDeleteTitle(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := m.manager.DeleteTitle(c.Request.Context(), ident, id); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "title deleted"})
}

func (m *Module) handleAddEpisode(c *gin.Context) {
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
		Name      string    `json:"name" binding:"required"`
		Duration  int       `json:"duration" binding:"required,min=1"`
		SortOrder int       `json:"sort_order" binding:"required,min=1"`
		AirDate   time.Time `json:"air_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.NewValidationError(err.Error(), "").ToGinResponse(c)
		return
	}

	episode, err := m.manager.AddEpisode(c.Request.Context(), ident, titleID,
		req.Name, req.Duration, req.SortOrder, req.AirDate)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, episode)
}

func (m *Module) handleListEpisodes(c *gin.Context) {
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	_, episodes, err := m.manager.GetTitle(c.Request.Context(), titleID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"episodes": episodes})
}

func (m *Module) handleGetEpisode(c *gin.Context) {
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := strconv.Atoi(c.Param("order"))
	if err != nil {
		apierr.NewValidationError("sort order must be an integer", "order").ToGinResponse(c)
		return
	}
	episode, aerr := m.manager.GetEpisodeByOrder(c.Request.Context(), titleID, order)
	if aerr != nil {
		apierr.Respond(c, aerr)
		return
	}
	c.JSON(http.StatusOK, episode)
}

func (m *Module) handleDeleteEpisode(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.NewMissingTokenError().ToGinResponse(c)
		return
	}
	titleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	episodeID, ok := pathID(c, "episodeID")
	if !ok {
		return
	}
	if err := m.manager.DeleteEpisode(c.Request.Context(), ident, titleID, episodeID); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "episode deleted"})
}

// pathID parses a positive integer path parameter, responding with a
// validation error itself when the value is junk.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierr.NewValidationError(name+" must be a positive integer", name).ToGinResponse(c)
		return 0, false
	}
	return uint(id), true
}
