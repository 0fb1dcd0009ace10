// Package engagementmodule owns reviews, their comments, and the
// like/dislike impressions users leave on reviews.
package engagementmodule

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/logger"
	"github.com/cinetrack/cinetrack/internal/modules/modulemanager"
)

// Auto-register the module when imported
func init() {
	Register()
}

const (
	// ModuleID is the unique identifier for the engagement module
	ModuleID = "engagement"

	// ModuleName is the display name for the engagement module
	ModuleName = "Engagement Manager"
)

// Module implements reviews, comments and impressions as a module
type Module struct {
	db      *gorm.DB
	manager *Manager
}

// Register registers the engagement module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

// ID returns the unique module identifier
func (m *Module) ID() string {
	return ModuleID
}

// Name returns the module display name
func (m *Module) Name() string {
	return ModuleName
}

// Core returns whether this is a core module
func (m *Module) Core() bool {
	return false
}

// Migrate performs database migrations
func (m *Module) Migrate(db *gorm.DB) error {
	logger.Info("Migrating engagement database schema")

	if err := db.AutoMigrate(
		&database.Review{},
		&database.Comment{},
		&database.Impression{},
	); err != nil {
		return fmt.Errorf("failed to migrate engagement models: %w", err)
	}

	return nil
}

// Init initializes the engagement module
func (m *Module) Init() error {
	logger.Info("Initializing engagement module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	m.manager = NewManager(m.db)

	return nil
}
