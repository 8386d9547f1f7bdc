package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/commentary"
	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
	"github.com/stitts-dev/club-sim/pkg/logger"
)

var (
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// SeasonDefaults fill in whatever a create request leaves empty
type SeasonDefaults struct {
	League   string
	UserClub string
	Seed     int64
	Cadence  int
}

type CreateSeasonRequest struct {
	League    string            `json:"league"`
	Clubs     []league.ClubSpec `json:"clubs"`
	Rivalries []league.Rivalry  `json:"rivalries"`
	UserClub  string            `json:"user_club"`
	Seed      int64             `json:"seed"`
	Cadence   int               `json:"monthly_cadence_rounds"`
}

type SeasonView struct {
	ID           uuid.UUID `json:"id"`
	League       string    `json:"league"`
	UserClub     string    `json:"user_club"`
	Seed         int64     `json:"seed"`
	Clubs        []string  `json:"clubs"`
	CurrentRound int       `json:"current_round"`
	TotalRounds  int       `json:"total_rounds"`
	Finished     bool      `json:"finished"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClubDashboard is the managed club's state as shown to the player
type ClubDashboard struct {
	Club             string                   `json:"club"`
	Coach            string                   `json:"coach"`
	Objective        string                   `json:"objective"`
	ExpectationTier  int                      `json:"expectation_tier"`
	TargetPosition   int                      `json:"target_position"`
	Position         int                      `json:"position"`
	Expectation      models.ExpectationStatus `json:"expectation"`
	BoardTrust       float64                  `json:"board_trust"`
	TeamInstability  float64                  `json:"team_instability"`
	CoachPressure    float64                  `json:"coach_pressure"`
	CrisisRisk       int                      `json:"crisis_risk"`
	UnderPressure    bool                     `json:"under_pressure"`
	UnderUltimatum   bool                     `json:"under_ultimatum"`
	LockerRoom       string                   `json:"locker_room"`
	UnbeatenStreak   int                      `json:"unbeaten_streak"`
	RecentPoints     []int                    `json:"recent_points"`
	AverageMorale    float64                  `json:"average_morale"`
	AverageEnergy    float64                  `json:"average_energy"`
	Balance          string                   `json:"balance"`
	MonthlyWageBill  string                   `json:"monthly_wage_bill"`
	LastMatchRevenue string                   `json:"last_match_revenue"`
	FinancialStatus  club.FinancialStatus     `json:"financial_status"`
	MatchesPlayed    int                      `json:"matches_played"`
}

// ClubEventView pairs a club event with its headline
type ClubEventView struct {
	club.Event
	Headline string `json:"headline"`
}

type managedSeason struct {
	mu        sync.Mutex
	season    *league.Season
	seed      int64
	createdAt time.Time
}

// SeasonService owns the running seasons. Each season is guarded by its own
// mutex; the simulation itself is single-threaded.
type SeasonService struct {
	mu       sync.RWMutex
	seasons  map[uuid.UUID]*managedSeason
	defaults SeasonDefaults
	cache    *SnapshotCache
	archive  *Archive
	hub      *LiveHub
	logger   *logrus.Logger
}

// NewSeasonService wires the optional collaborators; cache, archive and hub
// may each be nil.
func NewSeasonService(defaults SeasonDefaults, cache *SnapshotCache, archive *Archive, hub *LiveHub, logger *logrus.Logger) *SeasonService {
	if defaults.League == "" {
		defaults.League = league.DefaultDivision
	}
	if defaults.Cadence <= 0 {
		defaults.Cadence = league.DefaultMonthlyCadence
	}
	return &SeasonService{
		seasons:  make(map[uuid.UUID]*managedSeason),
		defaults: defaults,
		cache:    cache,
		archive:  archive,
		hub:      hub,
		logger:   logger,
	}
}

// CreateSeason builds a new season at round 1. Without clubs the default
// league and rivalries are used.
func (s *SeasonService) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*SeasonView, error) {
	name := req.League
	if name == "" {
		name = s.defaults.League
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
	cadence := req.Cadence
	if cadence <= 0 {
		cadence = s.defaults.Cadence
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.defaults.Seed
	}
	seed, err := random.SeedOrNew(seed)
	if err != nil {
		return nil, err
	}

	season, err := league.NewSeasonFromSpecs(name, specs, rivalries, userClub, cadence, random.New(seed), s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if s.hub != nil {
		season.SetObserver(s.hub.MatchObserver(season.ID))
	}

	ms := &managedSeason{season: season, seed: seed, createdAt: time.Now().UTC()}
	s.mu.Lock()
	s.seasons[season.ID] = ms
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.RecordSeason(ctx, season, seed); err != nil {
			logger.WithSeason(season.ID.String()).WithError(err).Warn("Failed to archive season")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"season":    season.ID.String(),
		"league":    name,
		"user_club": season.UserClub.Name,
		"seed":      seed,
	}).Info("Season created")

	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.view(), nil
}

func (s *SeasonService) get(id uuid.UUID) (*managedSeason, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.seasons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, id)
	}
	return ms, nil
}

func (s *SeasonService) GetSeason(id uuid.UUID) (*SeasonView, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.view(), nil
}

// ListSeasons returns every season, oldest first
func (s *SeasonService) ListSeasons() []*SeasonView {
	s.mu.RLock()
	all := make([]*managedSeason, 0, len(s.seasons))
	for _, ms := range s.seasons {
		all = append(all, ms)
	}
	s.mu.RUnlock()

	views := make([]*SeasonView, 0, len(all))
	for _, ms := range all {
		ms.mu.Lock()
		views = append(views, ms.view())
		ms.mu.Unlock()
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) })
	return views
}

// PlayRound plays the season's next round, then archives, caches and
// broadcasts the summary
func (s *SeasonService) PlayRound(ctx context.Context, id uuid.UUID) (*league.RoundSummary, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	summary, err := ms.season.PlayRound(ctx)
	if err != nil {
		ms.mu.Unlock()
		return nil, err
	}
	user := ms.season.UserClub
	dashboard := ms.dashboard()
	var archiveErr error
	if s.archive != nil {
		archiveErr = s.archive.RecordRound(ctx, id, summary, user)
	}
	ms.mu.Unlock()

	for _, r := range summary.Results {
		logger.WithMatch(id.String(), r.Round, r.Home, r.Away).WithFields(logrus.Fields{
			"home_goals": r.HomeGoals,
			"away_goals": r.AwayGoals,
		}).Debug("Fixture played")
	}
	if archiveErr != nil {
		s.logger.WithError(archiveErr).WithField("season", id.String()).Warn("Failed to archive round")
	}

	key := id.String()
	if err := s.cache.Set(ctx, StandingsCacheKey(key), summary.Standings); err != nil {
		s.logger.WithError(err).Warn("Failed to cache standings")
	}
	if err := s.cache.Set(ctx, DashboardCacheKey(key), dashboard); err != nil {
		s.logger.WithError(err).Warn("Failed to cache club dashboard")
	}
	if s.hub != nil {
		s.hub.PublishRound(id, summary)
	}
	return summary, nil
}

// Standings returns the season's table, served from the snapshot cache when
// available
func (s *SeasonService) Standings(ctx context.Context, id uuid.UUID) ([]league.TableEntry, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return remember(ctx, s.cache, StandingsCacheKey(id.String()), func() ([]league.TableEntry, error) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		return ms.season.League.Standings(), nil
	})
}

// ClubDashboard returns the managed club's state
func (s *SeasonService) ClubDashboard(ctx context.Context, id uuid.UUID) (*ClubDashboard, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return remember(ctx, s.cache, DashboardCacheKey(id.String()), func() (*ClubDashboard, error) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		return ms.dashboard(), nil
	})
}

// DrainClubEvents hands out the managed club's pending events exactly once
func (s *SeasonService) DrainClubEvents(id uuid.UUID) ([]ClubEventView, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	events := ms.season.UserClub.DrainEvents()
	ms.mu.Unlock()

	views := make([]ClubEventView, 0, len(events))
	for _, e := range events {
		views = append(views, ClubEventView{Event: e, Headline: commentary.Club(e)})
	}
	return views, nil
}

// Results returns the fixtures played so far
func (s *SeasonService) Results(id uuid.UUID) ([]league.FixtureResult, error) {
	ms, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]league.FixtureResult, len(ms.season.Results))
	copy(out, ms.season.Results)
	return out, nil
}

// AdvanceAll plays one round of every unfinished season and returns how many
// were advanced
func (s *SeasonService) AdvanceAll(ctx context.Context) (int, error) {
	s.mu.RLock()
	ids := make([]uuid.UUID, 0, len(s.seasons))
	for id := range s.seasons {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	advanced := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return advanced, err
		}
		_, err := s.PlayRound(ctx, id)
		switch {
		case err == nil:
			advanced++
		case errors.Is(err, league.ErrSeasonFinished):
		default:
			errs = append(errs, fmt.Errorf("season %s: %w", id, err))
		}
	}
	return advanced, errors.Join(errs...)
}

func (ms *managedSeason) view() *SeasonView {
	s := ms.season
	clubs := make([]string, 0, len(s.League.Clubs))
	for _, c := range s.League.Clubs {
		clubs = append(clubs, c.Name)
	}
	return &SeasonView{
		ID:           s.ID,
		League:       s.League.Name,
		UserClub:     s.UserClub.Name,
		Seed:         ms.seed,
		Clubs:        clubs,
		CurrentRound: s.League.CurrentRound,
		TotalRounds:  s.League.TotalRounds(),
		Finished:     s.Finished(),
		CreatedAt:    ms.createdAt,
	}
}

func (ms *managedSeason) dashboard() *ClubDashboard {
	c := ms.season.UserClub
	recent := make([]int, len(c.RecentPoints))
	copy(recent, c.RecentPoints)

	coach := ""
	if c.Squad.Coach != nil {
		coach = c.Squad.Coach.Name
	}
	return &ClubDashboard{
		Club:             c.Name,
		Coach:            coach,
		Objective:        c.SeasonObjective,
		ExpectationTier:  c.ExpectationTier,
		TargetPosition:   club.TargetPosition(c.ExpectationTier),
		Position:         ms.season.League.Position(c),
		Expectation:      c.LastExpectation,
		BoardTrust:       c.BoardTrust,
		TeamInstability:  c.TeamInstability,
		CoachPressure:    c.CoachPressure,
		CrisisRisk:       c.CrisisRisk,
		UnderPressure:    c.UnderPressure(),
		UnderUltimatum:   c.UnderUltimatum,
		LockerRoom:       c.LockerRoomStatus(),
		UnbeatenStreak:   c.UnbeatenStreak,
		RecentPoints:     recent,
		AverageMorale:    c.Squad.AverageMorale(),
		AverageEnergy:    c.Squad.AverageEnergy(),
		Balance:          c.Balance.StringFixed(2),
		MonthlyWageBill:  c.MonthlyWageBill.StringFixed(2),
		LastMatchRevenue: c.LastMatchRevenue.StringFixed(2),
		FinancialStatus:  c.FinancialStatus,
		MatchesPlayed:    c.MatchesPlayed,
	}
}
