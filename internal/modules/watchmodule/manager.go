package watchmodule

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/ownership"
)

// Manager implements watch progress operations. The episodes-watched
// bound is checked against the live episode count on every update;
// the count is never cached, so adding an episode to a series
// immediately raises the ceiling.
type Manager struct {
	db  *gorm.DB
	txm *database.TransactionManager
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, txm: database.NewTransactionManager(db)}
}

// StartWatching opens a progress record at zero episodes. The unique
// index on (user, title) is the authoritative guard against tracking
// the same title twice.
func (m *Manager) StartWatching(ctx context.Context, ident auth.Identity, titleID uint) (*database.WatchProgress, error) {
	if err := m.assertTitleExists(ctx, titleID); err != nil {
		return nil, err
	}

	progress := &database.WatchProgress{
		UserID:          ident.ID,
		TitleID:         titleID,
		Status:          database.WatchStatusNotStarted,
		EpisodesWatched: 0,
	}
	err := m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(progress).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.NewConflictError("already tracking this title")
		}
		return nil, apierr.NewDatabaseError("start watching", err)
	}
	return progress, nil
}

// UpdateProgress overwrites both the status and the episodes-watched
// count. Rewinding to a lower count is allowed; the only bound is the
// title's live episode count, re-read inside the transaction.
func (m *Manager) UpdateProgress(ctx context.Context, ident auth.Identity, titleID uint, status database.WatchStatus, episodesWatched int) (*database.WatchProgress, error) {
	if !status.Valid() {
		return nil, apierr.NewValidationError("status must be not_started, active or completed", "status")
	}
	if episodesWatched < 0 {
		return nil, apierr.NewValidationError("episodes watched must not be negative", "episodes_watched")
	}
	if err := m.assertTitleExists(ctx, titleID); err != nil {
		return nil, err
	}

	var progress *database.WatchProgress
	err := m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		loaded, err := loadProgress(tx, ident.ID, titleID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&database.Episode{}).Where("title_id = ?", titleID).Count(&count).Error; err != nil {
			return err
		}
		if int64(episodesWatched) > count {
			return apierr.NewValidationError("episodes watched exceeds the title's episode count", "episodes_watched")
		}

		loaded.EpisodesWatched = episodesWatched
		loaded.Status = status
		if err := tx.Save(loaded).Error; err != nil {
			return err
		}
		progress = loaded
		return nil
	})
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, apierr.NewDatabaseError("update progress", err)
	}
	return progress, nil
}

// AttachReview links the identity's own review of the same title to
// their progress record.
func (m *Manager) AttachReview(ctx context.Context, ident auth.Identity, titleID, reviewID uint) (*database.WatchProgress, error) {
	var review database.Review
	if err := m.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NewNotFoundError("review")
		}
		return nil, apierr.NewDatabaseError("load review", err)
	}
	if err := ownership.AssertOwner(ident, &review, "review"); err != nil {
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, apierr.NewValidationError("review is about a different title", "review_id")
	}

	progress, err := m.GetProgress(ctx, ident, titleID)
	if err != nil {
		return nil, err
	}
	progress.ReviewID = &reviewID
	if err := m.db.WithContext(ctx).Save(progress).Error; err != nil {
		return nil, apierr.NewDatabaseError("attach review", err)
	}
	return progress, nil
}

// GetProgress returns the identity's progress on one title.
func (m *Manager) GetProgress(ctx context.Context, ident auth.Identity, titleID uint) (*database.WatchProgress, error) {
	progress, err := loadProgress(m.db.WithContext(ctx), ident.ID, titleID)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, apierr.NewDatabaseError("load progress", err)
	}
	return progress, nil
}

// ListProgress returns everything the identity is tracking.
func (m *Manager) ListProgress(ctx context.Context, ident auth.Identity) ([]database.WatchProgress, error) {
	var progress []database.WatchProgress
	if err := m.db.WithContext(ctx).Where("user_id = ?", ident.ID).Order("title_id").Find(&progress).Error; err != nil {
		return nil, apierr.NewDatabaseError("list progress", err)
	}
	return progress, nil
}

func loadProgress(tx *gorm.DB, userID, titleID uint) (*database.WatchProgress, error) {
	var progress database.WatchProgress
	err := tx.Where("user_id = ? AND title_id = ?", userID, titleID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NewNotFoundError("watch progress")
		}
		return nil, err
	}
	return &progress, nil
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
