package server

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/middleware"
	"github.com/cinetrack/cinetrack/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/cinetrack/cinetrack/internal/modules/authmodule"
	_ "github.com/cinetrack/cinetrack/internal/modules/catalogmodule"
	_ "github.com/cinetrack/cinetrack/internal/modules/engagementmodule"
	_ "github.com/cinetrack/cinetrack/internal/modules/socialmodule"
	_ "github.com/cinetrack/cinetrack/internal/modules/watchmodule"
)

var moduleInitialized bool

// SetupRouter configures and returns the main router
func SetupRouter() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if err := initializeModules(); err != nil {
		return nil, err
	}

	registerCoreRoutes(r)
	modulemanager.RegisterRoutes(r)

	return r, nil
}

// initializeModules sets up the module system and loads all modules
func initializeModules() error {
	if moduleInitialized {
		return nil
	}

	db := database.GetDB()
	if err := modulemanager.LoadAll(db); err != nil {
		return err
	}

	moduleInitialized = true
	logModuleStatus()

	return nil
}

// logModuleStatus logs the loaded modules
func logModuleStatus() {
	modules := modulemanager.ListModules()

	log.Printf("Module system initialized with %d modules", len(modules))

	log.Printf("┌────────────────────────────────────────────────────────────────┐")
	log.Printf("│ %-20s │ %-25s │ %-8s │", "MODULE NAME", "MODULE ID", "CORE")
	log.Printf("├────────────────────────────────────────────────────────────────┤")

	for _, module := range modules {
		coreStatus := "No"
		if module.Core() {
			coreStatus = "Yes"
		}
		log.Printf("│ %-20s │ %-25s │ %-8s │",
			truncate(module.Name(), 20),
			truncate(module.ID(), 25),
			coreStatus)
	}

	log.Printf("└────────────────────────────────────────────────────────────────┘")
}

// truncate shortens a string to the given length, adding ... if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
