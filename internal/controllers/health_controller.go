package controllers

import (
	"net/http"
	"time"

	"github.com/DENNISVILL/makipartner/internal/utils"
)

// HealthController serves liveness and build info.
type HealthController struct {
	appName   string
	version   string
	startedAt time.Time
}

func NewHealthController(appName, version string) *HealthController {
	return &HealthController{
		appName:   appName,
		version:   version,
		startedAt: time.Now(),
	}
}

// GET /health
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(c.startedAt).String(),
	})
}

// GET /info
func (c *HealthController) Info(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"name":    c.appName,
		"version": c.version,
	})
}
