// Package watchmodule tracks how far each user is through a title.
package watchmodule

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
	// ModuleID is the unique identifier for the watch module
	ModuleID = "watch"

	// ModuleName is the display name for the watch module
	ModuleName = "Watch Progress"
)

// Module implements watch progress tracking as a module
type Module struct {
	db      *gorm.DB
	manager *Manager
}

// Register registers the watch module with the module system
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
	logger.Info("Migrating watch database schema")

	if err := db.AutoMigrate(&database.WatchProgress{}); err != nil {
		return fmt.Errorf("failed to migrate watch progress: %w", err)
	}

	return nil
}

// Init initializes the watch module
func (m *Module) Init() error {
	logger.Info("Initializing watch module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	m.manager = NewManager(m.db)

	return nil
}
