package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/services"
	"github.com/stitts-dev/club-sim/pkg/utils"
)

// sendServiceError maps domain and service errors onto the API error codes
func sendServiceError(c *gin.Context, err error) {
	var appErr *utils.AppError
	switch {
	case errors.Is(err, services.ErrSeasonNotFound):
		appErr = utils.NewAppError(utils.ErrCodeNotFound, "Season not found", err.Error())
	case errors.Is(err, league.ErrSeasonFinished):
		appErr = utils.NewAppError(utils.ErrCodeSeasonFinished, "Season is finished")
	case errors.Is(err, models.ErrInvalidLineup):
		appErr = utils.NewAppError(utils.ErrCodeInvalidLineup, "Invalid lineup", err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		appErr = utils.NewAppError(utils.ErrCodeValidation, "Invalid request", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		appErr = utils.NewAppError(utils.ErrCodeSimulation, "Simulation interrupted", err.Error())
	default:
		appErr = utils.NewAppError(utils.ErrCodeSimulation, "Simulation failed", err.Error())
	}
	_ = c.Error(err)
	utils.SendError(c, appErr.StatusCode(), appErr)
}

func seasonID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid season ID", err.Error())
		return uuid.Nil, false
	}
	return id, true
}
