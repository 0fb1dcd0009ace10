package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/logger"
)

var DB *gorm.DB

// Initialize sets up the database connection from the loaded configuration.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey on both sqlite and postgres; the managers rely on
// that as the authoritative guard for check-then-insert races.
func Initialize() error {
	cfg := config.Get()

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Type {
	case "postgres":
		db, err = connectPostgres(&cfg.Database)
	case "sqlite":
		db, err = connectSQLite(&cfg.Database)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLife.Std())

	DB = db
	logger.Info("Database initialized with %s", cfg.Database.Type)
	return nil
}

func gormConfig(dbCfg *config.DatabaseConfig) *gorm.Config {
	logMode := gormlogger.Warn
	if dbCfg.LogQueries {
		logMode = gormlogger.Info
	}
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logMode),
		TranslateError: true,
	}
}

func connectPostgres(dbCfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		dbCfg.Host, dbCfg.Username, dbCfg.Password, dbCfg.Database, dbCfg.Port)

	return gorm.Open(postgres.Open(dsn), gormConfig(dbCfg))
}

func connectSQLite(dbCfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbCfg.DatabasePath), 0755); err != nil {
		return nil, err
	}

	return gorm.Open(sqlite.Open(dbCfg.DatabasePath), gormConfig(dbCfg))
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB overrides the global database instance. Used by tests.
func SetDB(db *gorm.DB) {
	DB = db
}
