package league

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
)

// DefaultMonthlyCadence is the number of rounds between monthly financial cycles
const DefaultMonthlyCadence = 4

// MatchObserver receives each simulated minute of every fixture
type MatchObserver func(f Fixture, minute int, events []engine.Event)

// FixtureResult is the outcome of one played fixture
type FixtureResult struct {
	Round      int                `json:"round"`
	Home       string             `json:"home"`
	Away       string             `json:"away"`
	HomeGoals  int                `json:"home_goals"`
	AwayGoals  int                `json:"away_goals"`
	Match      engine.MatchResult `json:"match"`
	Evaluation *club.Evaluation   `json:"evaluation,omitempty"`
	PlayedAt   time.Time          `json:"played_at"`
}

// RoundSummary describes everything that happened in one round
type RoundSummary struct {
	Round            int                      `json:"round"`
	Results          []FixtureResult          `json:"results"`
	Standings        []TableEntry             `json:"standings"`
	UserPosition     int                      `json:"user_position"`
	Expectation      models.ExpectationStatus `json:"expectation"`
	MonthlyProcessed bool                     `json:"monthly_processed"`
	Finished         bool                     `json:"finished"`
}

// SeasonConfig wires a season together
type SeasonConfig struct {
	League         *League
	UserClub       *club.Club
	MonthlyCadence int
	Rng            random.Source
	Logger         *logrus.Logger
	Observer       MatchObserver
}

// Season plays a league one fixture at a time and feeds the user club's
// results into its club dynamics
type Season struct {
	ID             uuid.UUID
	League         *League
	UserClub       *club.Club
	MonthlyCadence int
	Results        []FixtureResult

	rng      random.Source
	logger   *logrus.Logger
	observer MatchObserver
}

// NewSeason validates the configuration and returns a season at round 1
func NewSeason(cfg SeasonConfig) (*Season, error) {
	if cfg.League == nil {
		return nil, fmt.Errorf("season: league is required")
	}
	if cfg.UserClub == nil || cfg.League.ClubByName(cfg.UserClub.Name) != cfg.UserClub {
		return nil, fmt.Errorf("season: user club must belong to league %s", cfg.League.Name)
	}
	if cfg.Rng == nil {
		return nil, fmt.Errorf("season: random source is required")
	}
	cadence := cfg.MonthlyCadence
	if cadence <= 0 {
		cadence = DefaultMonthlyCadence
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Season{
		ID:             uuid.New(),
		League:         cfg.League,
		UserClub:       cfg.UserClub,
		MonthlyCadence: cadence,
		rng:            cfg.Rng,
		logger:         log,
		observer:       cfg.Observer,
	}, nil
}

// SetObserver replaces the live match observer; nil disables it
func (s *Season) SetObserver(o MatchObserver) {
	s.observer = o
}

// Finished reports whether the last round has been played
func (s *Season) Finished() bool {
	return s.League.Finished()
}

// PlayRound plays every fixture of the current round in order, then runs the
// user club's expectation check and, on the monthly cadence, its financial
// cycle and transfer market
func (s *Season) PlayRound(ctx context.Context) (*RoundSummary, error) {
	if s.Finished() {
		return nil, ErrSeasonFinished
	}
	round := s.League.CurrentRound
	log := s.logger.WithFields(logrus.Fields{
		"season": s.ID.String(),
		"league": s.League.Name,
		"round":  round,
	})

	// nothing is recorded until the whole round has been simulated; a
	// cancelled round is replayed from scratch
	fixtures := s.League.CurrentFixtures()
	states := make([]*engine.MatchState, len(fixtures))
	for i, f := range fixtures {
		state, err := s.simulateFixture(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("round %d %s v %s: %w", round, f.Home.Name, f.Away.Name, err)
		}
		states[i] = state
	}

	summary := &RoundSummary{Round: round}
	for i, f := range fixtures {
		result, err := s.recordFixture(f, states[i])
		if err != nil {
			return nil, fmt.Errorf("round %d %s v %s: %w", round, f.Home.Name, f.Away.Name, err)
		}
		summary.Results = append(summary.Results, *result)
	}
	s.Results = append(s.Results, summary.Results...)

	summary.UserPosition = s.League.Position(s.UserClub)
	summary.Expectation = s.UserClub.EvaluateExpectation(summary.UserPosition)

	if round%s.MonthlyCadence == 0 {
		s.UserClub.ProcessMonthlyFinancials()
		s.UserClub.ProcessTransferMarket(s.userStatus(summary.UserPosition, round))
		summary.MonthlyProcessed = true
	}

	s.League.AdvanceRound()
	summary.Standings = s.League.Standings()
	summary.Finished = s.Finished()

	log.WithFields(logrus.Fields{
		"user_position": summary.UserPosition,
		"fixtures":      len(summary.Results),
		"monthly":       summary.MonthlyProcessed,
	}).Info("Round complete")
	return summary, nil
}

// PlayAll plays the remaining rounds
func (s *Season) PlayAll(ctx context.Context) ([]*RoundSummary, error) {
	var summaries []*RoundSummary
	for !s.Finished() {
		summary, err := s.PlayRound(ctx)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Season) simulateFixture(ctx context.Context, f Fixture) (*engine.MatchState, error) {
	eng, err := engine.NewMatchEngine(f.Home.Squad, f.Away.Squad, s.rng, s.logger)
	if err != nil {
		return nil, err
	}

	var observe engine.MinuteObserver
	if s.observer != nil {
		observe = func(minute int, events []engine.Event) {
			s.observer(f, minute, events)
		}
	}
	return eng.Run(ctx, observe)
}

// recordFixture updates the table and, for the user club's fixture, runs
// its evaluation and home revenue
func (s *Season) recordFixture(f Fixture, state *engine.MatchState) (*FixtureResult, error) {
	if err := s.League.RecordResult(f.Home, f.Away, state.HomeScore, state.AwayScore); err != nil {
		return nil, err
	}

	result := &FixtureResult{
		Round:     f.Round,
		Home:      f.Home.Name,
		Away:      f.Away.Name,
		HomeGoals: state.HomeScore,
		AwayGoals: state.AwayScore,
		Match:     state.Result(),
		PlayedAt:  time.Now().UTC(),
	}

	if f.Involves(s.UserClub) {
		isHome := f.Home == s.UserClub
		opponent := f.Opponent(s.UserClub)
		ev, err := s.UserClub.EvaluateMatch(state, isHome, s.UserClub.IsBigMatch(opponent.Name))
		if err != nil {
			return nil, err
		}
		result.Evaluation = ev
		if isHome {
			s.UserClub.ProcessMatchRevenue()
		}
	}
	return result, nil
}

func (s *Season) userStatus(position, round int) models.LeagueStatus {
	if position != 1 {
		return models.StatusNormal
	}
	if round >= s.League.TotalRounds() {
		return models.StatusChampion
	}
	return models.StatusLeader
}
