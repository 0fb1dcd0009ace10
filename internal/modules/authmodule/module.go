// Package authmodule owns account signup, login, and the session
// token surface both account partitions share.
package authmodule

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/logger"
	"github.com/cinetrack/cinetrack/internal/middleware"
	"github.com/cinetrack/cinetrack/internal/modules/modulemanager"
	"github.com/jonboulle/clockwork"
)

// Auto-register the module when imported
func init() {
	Register()
}

const (
	// ModuleID is the unique identifier for the auth module
	ModuleID = "system.auth"

	// ModuleName is the display name for the auth module
	ModuleName = "Auth Manager"
)

// Module implements account and session management as a module
type Module struct {
	db    *gorm.DB
	clock clockwork.Clock

	tokens *auth.TokenService
	store  *auth.CredentialStore
	authn  *middleware.Authenticator

	cookieName string
}

var defaultModule *Module

// Register registers the auth module with the module system
func Register() {
	defaultModule = &Module{}
	modulemanager.Register(defaultModule)
}

// Authn exposes the shared authenticator so other modules can gate
// their routes. Only valid after the module system has loaded.
func Authn() *middleware.Authenticator {
	return defaultModule.authn
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
	return true
}

// Migrate performs database migrations
func (m *Module) Migrate(db *gorm.DB) error {
	logger.Info("Migrating auth database schema")

	if err := db.AutoMigrate(
		&database.User{},
		&database.Producer{},
	); err != nil {
		return fmt.Errorf("failed to migrate account models: %w", err)
	}

	return nil
}

// Init initializes the auth module
func (m *Module) Init() error {
	logger.Info("Initializing auth module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}

	cfg := config.Get()
	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("auth token secret is not configured")
	}

	m.cookieName = cfg.Auth.CookieName
	m.tokens = auth.NewTokenService([]byte(cfg.Auth.TokenSecret), cfg.Auth.TokenTTL.Std(), m.clock)
	m.store = auth.NewCredentialStore(m.db, cfg.Auth.BcryptCost)
	m.authn = middleware.NewAuthenticator(m.tokens, m.store, m.cookieName)

	return nil
}
