package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/random"
	"github.com/stitts-dev/club-sim/internal/simulator"
)

type ProjectionRequest struct {
	League    string            `json:"league"`
	Clubs     []league.ClubSpec `json:"clubs"`
	Rivalries []league.Rivalry  `json:"rivalries"`
	UserClub  string            `json:"user_club"`
	Runs      int               `json:"runs"`
	Seed      int64             `json:"seed"`
}

// ProjectionService runs bounded Monte Carlo projections on request
type ProjectionService struct {
	defaultRuns int
	maxRuns     int
	workers     int
	defaults    SeasonDefaults
	logger      *logrus.Logger
}

func NewProjectionService(defaultRuns, maxRuns, workers int, defaults SeasonDefaults, logger *logrus.Logger) *ProjectionService {
	return &ProjectionService{
		defaultRuns: defaultRuns,
		maxRuns:     maxRuns,
		workers:     workers,
		defaults:    defaults,
		logger:      logger,
	}
}

func (s *ProjectionService) Project(ctx context.Context, req ProjectionRequest, progress chan<- simulator.ProgressUpdate) (*simulator.ProjectionResult, error) {
	runs := req.Runs
	if runs == 0 {
		runs = s.defaultRuns
	}
	if runs < 0 || runs > s.maxRuns {
		return nil, fmt.Errorf("%w: runs must be between 1 and %d", ErrInvalidRequest, s.maxRuns)
	}

	specs, rivalries := req.Clubs, req.Rivalries
	if len(specs) == 0 {
		specs = league.DefaultClubs()
		if rivalries == nil {
			rivalries = league.DefaultRivalries()
		}
	}
	userClub := req.UserClub
	if userClub == "" {
		userClub = s.defaults.UserClub
	}
	division := req.League
	if division == "" {
		division = s.defaults.League
	}
	seed, err := random.SeedOrNew(req.Seed)
	if err != nil {
		return nil, err
	}

	sim, err := simulator.NewProjectionSimulator(simulator.Config{
		Division:  division,
		Clubs:     specs,
		Rivalries: rivalries,
		UserClub:  userClub,
		Cadence:   s.defaults.Cadence,
		Runs:      runs,
		Workers:   s.workers,
		BaseSeed:  seed,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return sim.Run(ctx, progress)
}
