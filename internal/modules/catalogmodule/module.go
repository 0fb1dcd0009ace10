// Package catalogmodule owns titles and their episodes. Titles are
// producer-owned; every mutation runs through the ownership guard.
package catalogmodule

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
	// ModuleID is the unique identifier for the catalog module
	ModuleID = "catalog"

	// ModuleName is the display name for the catalog module
	ModuleName = "Catalog Manager"
)

// Module implements title and episode management as a module
type Module struct {
	db      *gorm.DB
	manager *Manager
}

// Register registers the catalog module with the module system
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
	logger.Info("Migrating catalog database schema")

	if err := db.AutoMigrate(
		&database.Title{},
		&database.Episode{},
	); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}

	return nil
}

// Init initializes the catalog module
func (m *Module) Init() error {
	logger.Info("Initializing catalog module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	m.manager = NewManager(m.db)

	return nil
}
