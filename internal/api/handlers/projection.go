package handlers

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/club-sim/internal/services"
	"github.com/stitts-dev/club-sim/pkg/utils"
)

const projectionTimeout = 2 * time.Minute

type ProjectionHandler struct {
	projections *services.ProjectionService
}

func NewProjectionHandler(projections *services.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{projections: projections}
}

// RunProjection plays many seeded seasons and returns the aggregate odds
func (h *ProjectionHandler) RunProjection(c *gin.Context) {
	var req services.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), projectionTimeout)
	defer cancel()

	result, err := h.projections.Project(ctx, req, nil)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, result)
}
