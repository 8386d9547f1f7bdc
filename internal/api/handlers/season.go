package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/club-sim/internal/services"
	"github.com/stitts-dev/club-sim/pkg/utils"
)

type SeasonHandler struct {
	seasons *services.SeasonService
	archive *services.Archive
}

// NewSeasonHandler takes an optional archive for the history endpoint
func NewSeasonHandler(seasons *services.SeasonService, archive *services.Archive) *SeasonHandler {
	return &SeasonHandler{
		seasons: seasons,
		archive: archive,
	}
}

// CreateSeason starts a season; an empty body uses the default league
func (h *SeasonHandler) CreateSeason(c *gin.Context) {
	var req services.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	view, err := h.seasons.CreateSeason(c.Request.Context(), req)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendCreated(c, view)
}

func (h *SeasonHandler) ListSeasons(c *gin.Context) {
	views := h.seasons.ListSeasons()
	utils.SendSuccessWithMeta(c, views, &utils.Meta{Total: len(views)})
}

func (h *SeasonHandler) GetSeason(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	view, err := h.seasons.GetSeason(id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// PlayRound simulates the season's next round
func (h *SeasonHandler) PlayRound(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	summary, err := h.seasons.PlayRound(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	view, err := h.seasons.GetSeason(id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, summary, &utils.Meta{Round: summary.Round, TotalRounds: view.TotalRounds})
}

func (h *SeasonHandler) GetStandings(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	standings, err := h.seasons.Standings(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, standings)
}

func (h *SeasonHandler) GetResults(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	results, err := h.seasons.Results(id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, results, &utils.Meta{Total: len(results)})
}

// GetClub returns the managed club's dashboard
func (h *SeasonHandler) GetClub(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	dash, err := h.seasons.ClubDashboard(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, dash)
}

// DrainClubEvents returns pending club events; each event is returned once
func (h *SeasonHandler) DrainClubEvents(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	events, err := h.seasons.DrainClubEvents(id)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, events, &utils.Meta{Total: len(events)})
}

// GetClubHistory returns the archived per-round club snapshots
func (h *SeasonHandler) GetClubHistory(c *gin.Context) {
	id, ok := seasonID(c)
	if !ok {
		return
	}
	if h.archive == nil {
		utils.SendAppError(c, utils.NewAppError(utils.ErrCodeServiceDegraded, "Match archive is disabled"))
		return
	}
	if _, err := h.seasons.GetSeason(id); err != nil {
		sendServiceError(c, err)
		return
	}
	history, err := h.archive.ClubHistory(c.Request.Context(), id)
	if err != nil {
		utils.SendInternalError(c, "Failed to load club history")
		return
	}
	utils.SendSuccess(c, history)
}
