package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/api/handlers"
	"github.com/stitts-dev/club-sim/internal/api/middleware"
	"github.com/stitts-dev/club-sim/internal/services"
	"github.com/stitts-dev/club-sim/pkg/config"
)

// Dependencies are the services the HTTP surface exposes. Archive may be nil.
type Dependencies struct {
	Seasons     *services.SeasonService
	Projections *services.ProjectionService
	Cache       *services.SnapshotCache
	Archive     *services.Archive
	Hub         *services.LiveHub
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewRouter builds the engine with middleware, health, API and WebSocket routes
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	healthHandler := handlers.NewHealthHandler(deps.Cache, deps.Archive, deps.Hub)
	router.GET("/health", healthHandler.GetHealth)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst))
	SetupRoutes(v1, deps)

	// WebSocket endpoint lives at the root, outside the rate limit
	liveHandler := handlers.NewLiveHandler(deps.Seasons, deps.Hub)
	router.GET("/ws/seasons/:id", liveHandler.Subscribe)

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	seasonHandler := handlers.NewSeasonHandler(deps.Seasons, deps.Archive)
	projectionHandler := handlers.NewProjectionHandler(deps.Projections)

	// Season endpoints
	group.POST("/seasons", seasonHandler.CreateSeason)
	group.GET("/seasons", seasonHandler.ListSeasons)
	group.GET("/seasons/:id", seasonHandler.GetSeason)
	group.POST("/seasons/:id/rounds", seasonHandler.PlayRound)
	group.GET("/seasons/:id/standings", seasonHandler.GetStandings)
	group.GET("/seasons/:id/results", seasonHandler.GetResults)

	// Managed club endpoints
	group.GET("/seasons/:id/club", seasonHandler.GetClub)
	group.GET("/seasons/:id/club/events", seasonHandler.DrainClubEvents)
	group.GET("/seasons/:id/club/history", seasonHandler.GetClubHistory)

	// Projection endpoints
	group.POST("/projections", projectionHandler.RunProjection)
}
