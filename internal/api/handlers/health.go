package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/club-sim/internal/services"
)

type HealthHandler struct {
	cache   *services.SnapshotCache
	archive *services.Archive
	hub     *services.LiveHub
	started time.Time
}

func NewHealthHandler(cache *services.SnapshotCache, archive *services.Archive, hub *services.LiveHub) *HealthHandler {
	return &HealthHandler{
		cache:   cache,
		archive: archive,
		hub:     hub,
		started: time.Now(),
	}
}

// GetHealth always returns 200 while the server runs. Redis trouble shows up
// as a degraded cache, never as a failed probe.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	archive := "disabled"
	if h.archive != nil {
		archive = "enabled"
	}
	connections := 0
	if h.hub != nil {
		connections = h.hub.GetConnectionCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"service":          "club-sim",
		"timestamp":        time.Now().UTC(),
		"uptime":           time.Since(h.started).Round(time.Second).String(),
		"cache":            h.cache.State(),
		"archive":          archive,
		"live_connections": connections,
	})
}
