package catalogmodule

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/ownership"
)

// Manager implements catalog operations. All mutations take the
// acting identity explicitly and return *apierr.Error values the
// handlers pass straight to the response.
type Manager struct {
	db  *gorm.DB
	txm *database.TransactionManager
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, txm: database.NewTransactionManager(db)}
}

// CreateTitle creates a title for the acting producer. A movie gets
// its single synthetic episode, sort order 1, in the same transaction
// so no observer ever sees a movie without it.
func (m *Manager) CreateTitle(ctx context.Context, ident auth.Identity, name string, kind database.TitleKind, start, end time.Time, duration int) (*database.Title, error) {
	if !kind.Valid() {
		return nil, apierr.NewValidationError("kind must be movie or series", "kind")
	}
	if end.Before(start) {
		return nil, apierr.NewValidationError("end date precedes start date", "end_date")
	}
	if kind == database.TitleKindMovie && duration < 1 {
		return nil, apierr.NewValidationError("movies need a positive duration", "duration")
	}

	title := &database.Title{
		ProducerID: ident.ID,
		Name:       name,
		StartDate:  start,
		EndDate:    end,
		Kind:       kind,
	}
	err := m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(title).Error; err != nil {
			return err
		}
		if kind == database.TitleKindMovie {
			episode := &database.Episode{
				TitleID:   title.ID,
				Name:      name,
				Duration:  duration,
				SortOrder: 1,
				AirDate:   start,
			}
			if err := tx.Create(episode).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierr.NewDatabaseError("create title", err)
	}
	return title, nil
}

// GetTitle returns a title with its episodes ordered by sort order.
func (m *Manager) GetTitle(ctx context.Context, id uint) (*database.Title, []database.Episode, error) {
	title, err := m.loadTitle(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var episodes []database.Episode
	if err := m.db.WithContext(ctx).Where("title_id = ?", id).Order("sort_order").Find(&episodes).Error; err != nil {
		return nil, nil, apierr.NewDatabaseError("load episodes", err)
	}
	return title, episodes, nil
}

// ListTitles returns every title in the catalog.
func (m *Manager) ListTitles(ctx context.Context) ([]database.Title, error) {
	var titles []database.Title
	if err := m.db.WithContext(ctx).Order("id").Find(&titles).Error; err != nil {
		return nil, apierr.NewDatabaseError("list titles", err)
	}
	return titles, nil
}

// DeleteTitle removes a title and everything hanging off it: its
// episodes, its reviews with their comments and impressions, and any
// watch progress rows. One transaction, so a failure leaves the whole
// tree intact.
func (m *Manager) DeleteTitle(ctx context.Context, ident auth.Identity, id uint) error {
	title, err := m.loadTitle(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.AssertOwner(ident, title, "title"); err != nil {
		return err
	}

	err = m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		var reviewIDs []uint
		if err := tx.Model(&database.Review{}).Where("title_id = ?", id).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if len(reviewIDs) > 0 {
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&database.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&database.Impression{}).Error; err != nil {
				return err
			}
			if err := tx.Where("title_id = ?", id).Delete(&database.Review{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("title_id = ?", id).Delete(&database.WatchProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&database.Episode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Title{}, id).Error
	})
	if err != nil {
		return apierr.NewDatabaseError("delete title", err)
	}
	return nil
}

// AddEpisode appends an episode to a series the identity owns. The
// unique index on (title, sort order) is the authoritative guard
// against duplicate orders.
func (m *Manager) AddEpisode(ctx context.Context, ident auth.Identity, titleID uint, name string, duration, sortOrder int, airDate time.Time) (*database.Episode, error) {
	title, err := m.loadTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if err := ownership.AssertOwner(ident, title, "title"); err != nil {
		return nil, err
	}
	if title.Kind == database.TitleKindMovie {
		return nil, apierr.NewValidationError("movies carry exactly one episode", "title_id")
	}
	if sortOrder < 1 {
		return nil, apierr.NewValidationError("sort order must be positive", "sort_order")
	}

	episode := &database.Episode{
		TitleID:   titleID,
		Name:      name,
		Duration:  duration,
		SortOrder: sortOrder,
		AirDate:   airDate,
	}
	err = m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(episode).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.NewConflictError("an episode with that sort order already exists")
		}
		return nil, apierr.NewDatabaseError("add episode", err)
	}
	return episode, nil
}

// GetEpisodeByOrder returns the episode of a title at a sort order.
func (m *Manager) GetEpisodeByOrder(ctx context.Context, titleID uint, sortOrder int) (*database.Episode, error) {
	var episode database.Episode
	err := m.db.WithContext(ctx).Where("title_id = ? AND sort_order = ?", titleID, sortOrder).First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NewNotFoundError("episode")
		}
		return nil, apierr.NewDatabaseError("load episode", err)
	}
	return &episode, nil
}

// DeleteEpisode removes one episode of a series the identity owns.
// A movie's single synthetic episode lives and dies with the title.
func (m *Manager) DeleteEpisode(ctx context.Context, ident auth.Identity, titleID, episodeID uint) error {
	title, err := m.loadTitle(ctx, titleID)
	if err != nil {
		return err
	}
	if err := ownership.AssertOwner(ident, title, "title"); err != nil {
		return err
	}
	if title.Kind == database.TitleKindMovie {
		return apierr.NewValidationError("movies carry exactly one episode", "title_id")
	}

	result := m.db.WithContext(ctx).Where("title_id = ?", titleID).Delete(&database.Episode{}, episodeID)
	if result.Error != nil {
		return apierr.NewDatabaseError("delete episode", result.Error)
	}
	if result.RowsAffected == 0 {
		return apierr.NewNotFoundError("episode")
	}
	return nil
}

// EpisodeCount returns the live number of episodes of a title.
func (m *Manager) EpisodeCount(ctx context.Context, titleID uint) (int64, error) {
	var count int64
	if err := m.db.WithContext(ctx).Model(&database.Episode{}).Where("title_id = ?", titleID).Count(&count).Error; err != nil {
		return 0, apierr.NewDatabaseError("count episodes", err)
	}
	return count, nil
}

func (m *Manager) loadTitle(ctx context.Context, id uint) (*database.Title, error) {
	var title database.Title
	if err := m.db.WithContext(ctx).First(&title, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NewNotFoundError("title")
		}
		return nil, apierr.NewDatabaseError("load title", err)
	}
	return &title, nil
}
