package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/modules/modulemanager"
)

// registerCoreRoutes wires the routes that belong to no module.
func registerCoreRoutes(r *gin.Engine) {
	r.GET("/api/health", handleHealth)
	r.GET("/api/modules", handleListModules)
}

func handleHealth(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	} else {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status})
}

func handleListModules(c *gin.Context) {
	type moduleInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Core bool   `json:"core"`
	}

	modules := modulemanager.ListModules()
	infos := make([]moduleInfo, 0, len(modules))
	for _, m := range modules {
		infos = append(infos, moduleInfo{ID: m.ID(), Name: m.Name(), Core: m.Core()})
	}
	c.JSON(http.StatusOK, gin.H{"modules": infos})
}
