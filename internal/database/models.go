package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// User represents a viewer identity. Users and producers live in separate
// role-partition tables; the two namespaces are independent.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Don't include password digest in JSON responses
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Producer represents a publishing identity that owns titles.
type Producer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TitleKind enum for titles.kind
type TitleKind string

const (
	TitleKindMovie  TitleKind = "movie"
	TitleKindSeries TitleKind = "series"
)

func (tk TitleKind) Value() (driver.Value, error) {
	return string(tk), nil
}

func (tk *TitleKind) Scan(value interface{}) error {
	if value == nil {
		*tk = ""
		return nil
	}
	switch s := value.(type) {
	case string:
		*tk = TitleKind(s)
	case []byte:
		*tk = TitleKind(s)
	default:
		return fmt.Errorf("cannot scan %T into TitleKind", value)
	}
	return nil
}

// Valid reports whether the kind is one of the known values.
func (tk TitleKind) Valid() bool {
	return tk == TitleKindMovie || tk == TitleKindSeries
}

// Title represents a movie or series owned by exactly one producer.
// A movie carries a single synthetic episode with sort order 1, created in
// the same transaction as the title itself.
type Title struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProducerID uint      `gorm:"not null;index" json:"producer_id"`
	Name       string    `gorm:"not null" json:"name"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null" json:"end_date"`
	Kind       TitleKind `gorm:"type:text;not null" json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnerID returns the producer that owns the title.
func (t *Title) OwnerID() uint { return t.ProducerID }

// Episode belongs to a title; the sort order is unique within it.
type Episode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TitleID   uint      `gorm:"not null;index;uniqueIndex:idx_episodes_title_order" json:"title_id"`
	Name      string    `gorm:"not null" json:"name"`
	Duration  int       `gorm:"not null" json:"duration"` // In minutes
	SortOrder int       `gorm:"not null;uniqueIndex:idx_episodes_title_order" json:"sort_order"`
	AirDate   time.Time `gorm:"not null" json:"air_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is a user's rating and write-up of a title. A user may review the
// same title more than once.
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TitleID     uint      `gorm:"not null;index" json:"title_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PublishedAt time.Time `gorm:"not null" json:"published_at"`
}

// OwnerID returns the review's author.
func (r *Review) OwnerID() uint { return r.UserID }

// Comment is a child of exactly one review.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ReviewID    uint      `gorm:"not null;index" json:"review_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PublishedAt time.Time `gorm:"not null" json:"published_at"`
}

// OwnerID returns the comment's author.
func (c *Comment) OwnerID() uint { return c.UserID }

// Impression is a like (+1) or dislike (-1) on a review. The unique index is
// the authoritative guard for the one-impression-per-user-per-review rule.
type Impression struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_impressions_user_review" json:"user_id"`
	ReviewID uint `gorm:"not null;index;uniqueIndex:idx_impressions_user_review" json:"review_id"`
	Value    int  `gorm:"not null" json:"value"` // +1 like, -1 dislike
}

// OwnerID returns the impression's author.
func (i *Impression) OwnerID() uint { return i.UserID }

// FollowEdge is a directed follow relationship between two users. The
// composite primary key enforces at-most-one edge per ordered pair.
type FollowEdge struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// OwnerID returns the follower side, which owns the edge.
func (f *FollowEdge) OwnerID() uint { return f.FollowerID }

// WatchStatus enum for watch_progresses.status
type WatchStatus string

const (
	WatchStatusNotStarted WatchStatus = "not_started"
	WatchStatusActive     WatchStatus = "active"
	WatchStatusCompleted  WatchStatus = "completed"
)

func (ws WatchStatus) Value() (driver.Value, error) {
	return string(ws), nil
}

func (ws *WatchStatus) Scan(value interface{}) error {
	if value == nil {
		*ws = ""
		return nil
	}
	switch s := value.(type) {
	case string:
		*ws = WatchStatus(s)
	case []byte:
		*ws = WatchStatus(s)
	default:
		return fmt.Errorf("cannot scan %T into WatchStatus", value)
	}
	return nil
}

// Valid reports whether the status is one of the known values.
func (ws WatchStatus) Valid() bool {
	switch ws {
	case WatchStatusNotStarted, WatchStatusActive, WatchStatusCompleted:
		return true
	}
	return false
}

// WatchProgress tracks how far a user is through a title. One row per
// (user, title); episodes watched never exceeds the title's live episode
// count. ReviewID optionally links the user's own review of the title.
type WatchProgress struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;uniqueIndex:idx_watch_user_title" json:"user_id"`
	TitleID         uint        `gorm:"not null;index;uniqueIndex:idx_watch_user_title" json:"title_id"`
	Status          WatchStatus `gorm:"type:text;not null" json:"status"`
	EpisodesWatched int         `gorm:"not null;default:0" json:"episodes_watched"`
	ReviewID        *uint       `json:"review_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OwnerID returns the tracking user.
func (w *WatchProgress) OwnerID() uint { return w.UserID }
