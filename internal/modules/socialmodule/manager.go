package socialmodule

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/database"
)

// Manager implements follow-graph operations. Edges are directed;
// following is never mutual unless both edges exist.
type Manager struct {
	db  *gorm.DB
	txm *database.TransactionManager
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, txm: database.NewTransactionManager(db)}
}

// Follow creates the edge ident -> target. The composite primary key
// on the edge table is the authoritative duplicate guard; the
// pre-check only exists for a cleaner message on the common path.
func (m *Manager) Follow(ctx context.Context, ident auth.Identity, targetID uint) error {
	if targetID == ident.ID {
		return apierr.NewValidationError("cannot follow yourself", "target_id")
	}
	if err := m.assertUserExists(ctx, targetID); err != nil {
		return err
	}

	err := m.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.FollowEdge{}).
			Where("follower_id = ? AND followee_id = ?", ident.ID, targetID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&database.FollowEdge{FollowerID: ident.ID, FolloweeID: targetID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.NewConflictError("already following this user")
		}
		return apierr.NewDatabaseError("follow", err)
	}
	return nil
}

// Unfollow removes the edge ident -> target. Unfollowing without a
// prior follow is a state conflict, same as following twice.
func (m *Manager) Unfollow(ctx context.Context, ident auth.Identity, targetID uint) error {
	if targetID == ident.ID {
		return apierr.NewValidationError("cannot unfollow yourself", "target_id")
	}
	if err := m.assertUserExists(ctx, targetID); err != nil {
		return err
	}

	result := m.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", ident.ID, targetID).
		Delete(&database.FollowEdge{})
	if result.Error != nil {
		return apierr.NewDatabaseError("unfollow", result.Error)
	}
	if result.RowsAffected == 0 {
		return apierr.NewConflictError("not following this user")
	}
	return nil
}

// Followers returns the users following userID.
func (m *Manager) Followers(ctx context.Context, userID uint) ([]database.User, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	var users []database.User
	err := m.db.WithContext(ctx).
		Joins("JOIN follow_edges ON follow_edges.follower_id = users.id").
		Where("follow_edges.followee_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, apierr.NewDatabaseError("list followers", err)
	}
	return users, nil
}

// Following returns the users userID follows.
func (m *Manager) Following(ctx context.Context, userID uint) ([]database.User, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	var users []database.User
	err := m.db.WithContext(ctx).
		Joins("JOIN follow_edges ON follow_edges.followee_id = users.id").
		Where("follow_edges.follower_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, apierr.NewDatabaseError("list following", err)
	}
	return users, nil
}

func (m *Manager) assertUserExists(ctx context.Context, id uint) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apierr.NewDatabaseError("look up user", err)
	}
	if count == 0 {
		return apierr.NewNotFoundError("user")
	}
	return nil
}
