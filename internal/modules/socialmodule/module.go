// Package socialmodule owns the directed follow graph between users.
package socialmodule

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
	// ModuleID is the unique identifier for the social module
	ModuleID = "social"

	// ModuleName is the display name for the social module
	ModuleName = "Social Graph"
)

// Module implements the follow graph as a module
type Module struct {
	db      *gorm.DB
	manager *Manager
}

// Register registers the social module with the module system
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
	logger.Info("Migrating social database schema")

	if err := db.AutoMigrate(&database.FollowEdge{}); err != nil {
		return fmt.Errorf("failed to migrate follow edges: %w", err)
	}

	return nil
}

// Init initializes the social module
func (m *Module) Init() error {
	logger.Info("Initializing social module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	m.manager = NewManager(m.db)

	return nil
}
