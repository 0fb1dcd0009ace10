package engagementmodule

import (
	"context"
	"sync"
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
	alice = auth.Identity{ID: 1, Username: "alice", Role: auth.RoleUser}
	bob   = auth.Identity{ID: 2, Username: "bob", Role: auth.RoleUser}
	carol = auth.Identity{ID: 3, Username: "carol", Role: auth.RoleUser}
)

func newTestManager(t *testing.T) (*Manager, uint) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.Title{}, &database.Review{},
		&database.Comment{}, &database.Impression{},
	))

	title := database.Title{
		ProducerID: 100,
		Name:       "Heat",
		StartDate:  time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC),
		Kind:       database.TitleKindMovie,
	}
	require.NoError(t, db.Create(&title).Error)
	return NewManager(db), title.ID
}

func TestAddReviewValidation(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddReview(ctx, alice, titleID, 0, "meh")
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.AddReview(ctx, alice, titleID, 6, "meh")
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.AddReview(ctx, alice, titleID, 3, "   ")
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.AddReview(ctx, alice, 999, 3, "meh")
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}

func TestImpressionLifecycle(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	review, err := m.AddReview(ctx, alice, titleID, 5, "a classic")
	require.NoError(t, err)

	// Bob likes it once; the second attempt conflicts even with a
	// different value.
	_, err = m.AddImpression(ctx, bob, review.ID, 1)
	require.NoError(t, err)
	_, err = m.AddImpression(ctx, bob, review.ID, -1)
	assert.True(t, apierr.IsCode(err, "CONFLICT"))

	_, err = m.AddImpression(ctx, carol, review.ID, -1)
	require.NoError(t, err)

	score, err := m.NetScore(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	// Withdrawing carol's dislike moves the score up.
	require.NoError(t, m.RemoveImpression(ctx, carol, review.ID))
	score, err = m.NetScore(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, score)
}

func TestConcurrentImpressionsSingleWinner(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	review, err := m.AddReview(ctx, alice, titleID, 5, "a classic")
	require.NoError(t, err)

	// One connection so the racing transactions serialize in sqlite
	// instead of tripping over file locking.
	sqlDB, err := m.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddImpression(ctx, bob, review.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case apierr.IsCode(err, "CONFLICT"):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int64
	require.NoError(t, m.db.Model(&database.Impression{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImpressionValidation(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	review, err := m.AddReview(ctx, alice, titleID, 4, "solid")
	require.NoError(t, err)

	_, err = m.AddImpression(ctx, bob, review.ID, 2)
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.AddImpression(ctx, bob, 999, 1)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))

	err = m.RemoveImpression(ctx, bob, review.ID)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}

func TestDeleteReviewOwnershipAndCascade(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	review, err := m.AddReview(ctx, alice, titleID, 5, "a classic")
	require.NoError(t, err)
	_, err = m.AddComment(ctx, bob, review.ID, "agreed")
	require.NoError(t, err)
	_, err = m.AddImpression(ctx, bob, review.ID, 1)
	require.NoError(t, err)

	// Someone else's delete is forbidden and changes nothing.
	err = m.DeleteReview(ctx, bob, review.ID)
	assert.True(t, apierr.IsCode(err, "FORBIDDEN"))
	_, _, err = m.GetReview(ctx, review.ID)
	require.NoError(t, err)

	// The author's delete takes the comments and impressions with it.
	require.NoError(t, m.DeleteReview(ctx, alice, review.ID))
	_, _, err = m.GetReview(ctx, review.ID)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))

	var comments, impressions int64
	require.NoError(t, m.db.Model(&database.Comment{}).Count(&comments).Error)
	require.NoError(t, m.db.Model(&database.Impression{}).Count(&impressions).Error)
	assert.Zero(t, comments)
	assert.Zero(t, impressions)
}

func TestComments(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	review, err := m.AddReview(ctx, alice, titleID, 5, "a classic")
	require.NoError(t, err)

	_, err = m.AddComment(ctx, bob, review.ID, "")
	assert.True(t, apierr.IsCode(err, "VALIDATION_ERROR"))

	_, err = m.AddComment(ctx, bob, 999, "hello")
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))

	comment, err := m.AddComment(ctx, bob, review.ID, "agreed")
	require.NoError(t, err)

	comments, err := m.ListComments(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// Only the comment's author may remove it.
	err = m.DeleteComment(ctx, alice, comment.ID)
	assert.True(t, apierr.IsCode(err, "FORBIDDEN"))
	require.NoError(t, m.DeleteComment(ctx, bob, comment.ID))

	err = m.DeleteComment(ctx, bob, comment.ID)
	assert.True(t, apierr.IsCode(err, "NOT_FOUND"))
}

func TestMultipleReviewsPerUserAllowed(t *testing.T) {
	m, titleID := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddReview(ctx, alice, titleID, 2, "first watch")
	require.NoError(t, err)
	_, err = m.AddReview(ctx, alice, titleID, 5, "grew on me")
	require.NoError(t, err)

	reviews, err := m.ListReviewsByTitle(ctx, titleID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
