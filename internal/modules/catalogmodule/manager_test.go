package catalogmodule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
)

var (
	studioA = auth.Identity{ID: 1, Username: "studio-a", Role: auth.RoleProducer}
	studioB = auth.Identity{ID: 2, Username: "studio-b", Role: auth.RoleProducer}
)

func newTestManager(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.Title{}, &database.Episode{},
		&database.Review{}, &database.Comment{}, &database.Impression{},
		&database.WatchProgress{},
	))
	return NewManager(db), db
}

func aired(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestCreateMovieCreatesSyntheticEpisode(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "Heat", database.TitleKindMovie, aired(1), aired(1), 170)
	require.NoError(t, err)

	_, episodes, err := m.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, 1, episodes[0].SortOrder)
	assert.Equal(t, "Heat", episodes[0].Name)
	assert.Equal(t, 170, episodes[0].Duration)
}

func TestCreateSeriesStartsEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)

	count, err := m.EpisodeCount(ctx, title.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateTitleValidation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateTitle(ctx, studioA, "X", database.TitleKind("podcast"), aired(1), aired(2), 0)
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.CreateTitle(ctx, studioA, "X", database.TitleKindMovie, aired(2), aired(1), 90)
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	// A movie's synthetic episode needs a real runtime.
	_, err = m.CreateTitle(ctx, studioA, "X", database.TitleKindMovie, aired(1), aired(1), 0)
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))
}

func TestAddEpisodeDuplicateOrder(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)

	_, err = m.AddEpisode(ctx, studioA, title.ID, "The Target", 60, 1, aired(1))
	require.NoError(t, err)

	_, err = m.AddEpisode(ctx, studioA, title.ID, "The Detail", 58, 1, aired(8))
	assert.True(t, apierr.IsCode(err, "CONFLICT"))

	// A different order is fine.
	_, err = m.AddEpisode(ctx, studioA, title.ID, "The Detail", 58, 2, aired(8))
	assert.NoError(t, err)
}

func TestAddEpisodeToMovieRejected(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "Heat", database.TitleKindMovie, aired(1), aired(1), 170)
	require.NoError(t, err)

	_, err = m.AddEpisode(ctx, studioA, title.ID, "Heat 2", 120, 2, aired(2))
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))
}

func TestEpisodeOwnership(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)

	_, err = m.AddEpisode(ctx, studioB, title.ID, "Pirate Cut", 60, 1, aired(1))
	assert.True(t, apierr.IsCode(err, "FORBIDDEN"))

	err = m.DeleteTitle(ctx, studioB, title.ID)
	assert.True(t, apierr.IsCode(err, "FORBIDDEN"))
}

func TestDeleteTitleCascades(t *testing.T) {
	m, db := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)
	_, err = m.AddEpisode(ctx, studioA, title.ID, "The Target", 60, 1, aired(1))
	require.NoError(t, err)

	// Engagement hanging off the title.
	review := database.Review{UserID: 7, TitleID: title.ID, Rating: 5, Text: "great", PublishedAt: aired(2)}
	require.NoError(t, db.Create(&review).Error)
	require.NoError(t, db.Create(&database.Comment{UserID: 8, ReviewID: review.ID, Text: "agreed", PublishedAt: aired(3)}).Error)
	require.NoError(t, db.Create(&database.Impression{UserID: 8, ReviewID: review.ID, Value: 1}).Error)
	require.NoError(t, db.Create(&database.WatchProgress{UserID: 7, TitleID: title.ID, Status: database.WatchStatusActive, EpisodesWatched: 1}).Error)

	require.NoError(t, m.DeleteTitle(ctx, studioA, title.ID))

	for _, model := range []interface{}{
		&database.Episode{}, &database.Review{}, &database.Comment{},
		&database.Impression{}, &database.WatchProgress{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, _, err = m.GetTitle(ctx, title.ID)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}

func TestDeleteEpisode(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)
	ep, err := m.AddEpisode(ctx, studioA, title.ID, "The Target", 60, 1, aired(1))
	require.NoError(t, err)

	require.NoError(t, m.DeleteEpisode(ctx, studioA, title.ID, ep.ID))
	err = m.DeleteEpisode(ctx, studioA, title.ID, ep.ID)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}

func TestDeleteMovieEpisodeRejected(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "Heat", database.TitleKindMovie, aired(1), aired(1), 170)
	require.NoError(t, err)
	ep, err := m.GetEpisodeByOrder(ctx, title.ID, 1)
	require.NoError(t, err)

	// Even the owner cannot strip a movie of its single episode.
	err = m.DeleteEpisode(ctx, studioA, title.ID, ep.ID)
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.GetEpisodeByOrder(ctx, title.ID, 1)
	assert.NoError(t, err)
}

func TestGetEpisodeByOrder(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	title, err := m.CreateTitle(ctx, studioA, "The Wire", database.TitleKindSeries, aired(1), aired(20), 0)
	require.NoError(t, err)
	_, err = m.AddEpisode(ctx, studioA, title.ID, "The Target", 60, 1, aired(1))
	require.NoError(t, err)

	ep, err := m.GetEpisodeByOrder(ctx, title.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Target", ep.Name)

	_, err = m.GetEpisodeByOrder(ctx, title.ID, 2)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}
