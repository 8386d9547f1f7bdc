package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/club-sim/internal/services"
)

type LiveHandler struct {
	seasons *services.SeasonService
	hub     *services.LiveHub
}

func NewLiveHandler(seasons *services.SeasonService, hub *services.LiveHub) *LiveHandler {
	return &LiveHandler{seasons: seasons, hub: hub}
}

// Subscribe upgrades to a WebSocket streaming the season's matches
func (h *LiveHandler) Subscribe(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	if _, err := h.seasons.GetSeason(id); err != nil {
		sendServiceError(c, err)
		return
	}
	h.hub.Serve(c.Writer, c.Request, id)
}
