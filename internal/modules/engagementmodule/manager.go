package engagementmodule

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/ownership"
)

// Manager implements review, comment and impression operations.
// Users only ever mutate their own rows; the ownership guard runs on
// every delete.
type Manager struct {
	db  *gorm.DB
	txm *database.TransactionManager
	now func() time.Time
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, txm: database.NewTransactionManager(db), now: time.Now}
}

// AddReview publishes a review of a title. A user may review the same
// title more than once.
func (m *Manager) AddReview(ctx context.Context, ident auth.Identity, titleID uint, rating int, text string) (*database.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apierr.NewValidationError("rating must be between 1 and 5", "rating")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apierr.NewValidationError("review text must not be empty", "text")
	}
	if err := m.assertTitleExists(ctx, titleID); err != nil {
		return nil, err
	}

	review := &database.Review{
		UserID:      ident.ID,
		TitleID:     titleID,
		Rating:      rating,
		Text:        text,
		PublishedAt: m.now().UTC(),
	}
	if err := m.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, apierr.NewDatabaseError("add review", err)
	}
	return review, nil
}

// GetReview returns one review with its net score.
func (m *Manager) GetReview(ctx context.Context, id uint) (*database.Review, int, error) {
	review, err := m.loadReview(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	score, err := m.NetScore(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return review, score, nil
}

// ListReviewsByTitle returns every review of a title.
func (m *Manager) ListReviewsByTitle(ctx context.Context, titleID uint) ([]database.Review, error) {
	if err := m.assertTitleExists(ctx, titleID); err != nil {
		return nil, err
	}
	var reviews []database.Review
	if err := m.db.WithContext(ctx).Where("title_id = ?", titleID).Order("id").Find(&reviews).Error; err != nil {
		return nil, apierr.NewDatabaseError("list reviews", err)
	}
	return reviews, nil
}

// DeleteReview removes a review the identity owns, along with every
// comment and impression attached to it, in one transaction.
func (m *Manager) DeleteReview(ctx context.Context, ident auth.Identity, id uint) error {
	review, err := m.loadReview(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.AssertOwner(ident, review, "review"); err != nil {
		return err
	}

	err = m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&database.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&database.Impression{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Review{}, id).Error
	})
	if err != nil {
		return apierr.NewDatabaseError("delete review", err)
	}
	return nil
}

// AddComment attaches a comment to a review.
func (m *Manager) AddComment(ctx context.Context, ident auth.Identity, reviewID uint, text string) (*database.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierr.NewValidationError("comment text must not be empty", "text")
	}
	if _, err := m.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}

	comment := &database.Comment{
		UserID:      ident.ID,
		ReviewID:    reviewID,
		Text:        text,
		PublishedAt: m.now().UTC(),
	}
	if err := m.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, apierr.NewDatabaseError("add comment", err)
	}
	return comment, nil
}

// ListComments returns a review's comments.
func (m *Manager) ListComments(ctx context.Context, reviewID uint) ([]database.Comment, error) {
	if _, err := m.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}
	var comments []database.Comment
	if err := m.db.WithContext(ctx).Where("review_id = ?", reviewID).Order("id").Find(&comments).Error; err != nil {
		return nil, apierr.NewDatabaseError("list comments", err)
	}
	return comments, nil
}

// DeleteComment removes a comment the identity owns.
func (m *Manager) DeleteComment(ctx context.Context, ident auth.Identity, id uint) error {
	var comment database.Comment
	if err := m.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NewNotFoundError("comment")
		}
		return apierr.NewDatabaseError("load comment", err)
	}
	if err := ownership.AssertOwner(ident, &comment, "comment"); err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Delete(&database.Comment{}, id).Error; err != nil {
		return apierr.NewDatabaseError("delete comment", err)
	}
	return nil
}

// AddImpression records a like (+1) or dislike (-1) on a review. The
// unique index on (user, review) is the authoritative guard for the
// one-impression rule; near-simultaneous adds lose the race and get
// the same conflict as a plain double add.
func (m *Manager) AddImpression(ctx context.Context, ident auth.Identity, reviewID uint, value int) (*database.Impression, error) {
	if value != 1 && value != -1 {
		return nil, apierr.NewValidationError("value must be +1 or -1", "value")
	}
	if _, err := m.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}

	impression := &database.Impression{UserID: ident.ID, ReviewID: reviewID, Value: value}
	err := m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(impression).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.NewConflictError("you already rated this review")
		}
		return nil, apierr.NewDatabaseError("add impression", err)
	}
	return impression, nil
}

// RemoveImpression withdraws the identity's impression on a review.
func (m *Manager) RemoveImpression(ctx context.Context, ident auth.Identity, reviewID uint) error {
	result := m.db.WithContext(ctx).
		Where("user_id = ? AND review_id = ?", ident.ID, reviewID).
		Delete(&database.Impression{})
	if result.Error != nil {
		return apierr.NewDatabaseError("remove impression", result.Error)
	}
	if result.RowsAffected == 0 {
		return apierr.NewNotFoundError("impression")
	}
	return nil
}

// NetScore is the sum of impression values on a review, computed on
// read rather than cached.
func (m *Manager) NetScore(ctx context.Context, reviewID uint) (int, error) {
	var score struct {
		Total int
	}
	err := m.db.WithContext(ctx).Model(&database.Impression{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("review_id = ?", reviewID).
		Scan(&score).Error
	if err != nil {
		return 0, apierr.NewDatabaseError("net score", err)
	}
	return score.Total, nil
}

func (m *Manager) loadReview(ctx context.Context, id uint) (*database.Review, error) {
	var review database.Review
	if err := m.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NewNotFoundError("review")
		}
		return nil, apierr.NewDatabaseError("load review", err)
	}
	return &review, nil
}

func (m *Manager) assertTitleExists(ctx context.Context, titleID uint) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&database.Title{}).Where("id = ?", titleID).Count(&count).Error; err != nil {
		return apierr.NewDatabaseError("look up title", err)
	}
	if count == 0 {
		return apierr.NewNotFoundError("title")
	}
	return nil
}
