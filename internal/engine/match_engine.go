package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
)

// MatchLength is the number of simulated minutes in a match
const MatchLength = 90

const (
	baseAttackRate      = 0.20
	finishingModifier   = 0.25
	goalCooldownMinutes = 3
	goalCooldownFactor  = 0.7
	// a missed chance is only logged when this draw is exceeded
	missedChanceLogThreshold = 0.6

	defensiveShapeBonus     = 1.1
	veryDefensiveShapeBonus = 1.25
)

// chance creation multiplier by posture, VeryDefensive..AllOutAttack
var creationPostureMultiplier = [models.PostureCount]float64{0.6, 0.8, 1.0, 1.2, 1.4}

// MinuteObserver is called after each simulated minute with the events
// produced during that minute
type MinuteObserver func(minute int, events []Event)

// MatchEngine runs a minute-by-minute simulation between two teams
type MatchEngine struct {
	state  *MatchState
	rng    random.Source
	logger *logrus.Logger
}

// NewMatchEngine prepares a match. Every rostered player starts at full
// energy and both teams' strengths are recomputed from their lineups.
func NewMatchEngine(home, away *models.Team, rng random.Source, logger *logrus.Logger) (*MatchEngine, error) {
	if home == nil || away == nil {
		return nil, fmt.Errorf("both teams are required")
	}
	if home == away {
		return nil, fmt.Errorf("team %q cannot play itself", home.Name)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	for _, t := range []*models.Team{home, away} {
		if len(t.StartingEleven) != models.StartingElevenSize {
			return nil, fmt.Errorf("%w: %s has %d starters", models.ErrInvalidLineup, t.Name, len(t.StartingEleven))
		}
		for _, p := range t.Players {
			p.ResetForMatch()
		}
		t.RecalculateMatchStrength(false)
	}

	return &MatchEngine{
		state:  newMatchState(home, away),
		rng:    rng,
		logger: logger,
	}, nil
}

// State returns the live match state
func (e *MatchEngine) State() *MatchState {
	return e.state
}

// Finished reports whether all minutes have been played
func (e *MatchEngine) Finished() bool {
	return e.state.CurrentMinute >= MatchLength
}

// AdvanceMinute simulates one minute. It is a no-op once the match is over.
func (e *MatchEngine) AdvanceMinute() {
	if e.Finished() {
		return
	}
	s := e.state
	s.incrementMinute()

	e.updateTeamStatus(s.HomeTeam)
	e.updateTeamStatus(s.AwayTeam)

	s.HomeTeam.UpdateOffensiveEfficiency(s.AwayTeam.DefenseStrength)
	s.AwayTeam.UpdateOffensiveEfficiency(s.HomeTeam.DefenseStrength)

	e.processAttackPhase(Home)
	e.processAttackPhase(Away)

	if e.Finished() {
		s.addEvent(Event{Kind: EventFullTime, Side: Home})
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"home":       s.HomeTeam.Name,
				"away":       s.AwayTeam.Name,
				"home_score": s.HomeScore,
				"away_score": s.AwayScore,
			}).Debug("Match finished")
		}
	}
}

// Run plays the remaining minutes, stopping early if ctx is cancelled.
// observer may be nil.
func (e *MatchEngine) Run(ctx context.Context, observer MinuteObserver) (*MatchState, error) {
	for !e.Finished() {
		select {
		case <-ctx.Done():
			return e.state, ctx.Err()
		default:
		}

		mark := len(e.state.Events)
		e.AdvanceMinute()
		if observer != nil {
			observer(e.state.CurrentMinute, e.state.EventsSince(mark))
		}
	}
	return e.state, nil
}

// ApplySubstitution swaps a starter for a bench player on side and logs the
// outcome. It returns false when the swap is rejected.
func (e *MatchEngine) ApplySubstitution(side Side, out, in *models.Player) bool {
	team := e.state.Team(side)
	ok := team.ApplySubstitution(out, in)

	kind := EventSubstitution
	if !ok {
		kind = EventSubstitutionFailed
	}
	e.state.addEvent(Event{
		Kind:         kind,
		Side:         side,
		Player:       out,
		PlayerName:   playerName(out),
		PlayerIn:     in,
		PlayerInName: playerName(in),
	})
	return ok
}

// ChangeTacticalPosture switches side's posture and logs it
func (e *MatchEngine) ChangeTacticalPosture(side Side, posture models.TacticalPosture) {
	team := e.state.Team(side)
	team.ChangeTacticalPosture(posture)
	e.state.addEvent(Event{
		Kind:    EventTacticalChange,
		Side:    side,
		Posture: team.CurrentTacticalPosture,
	})
}

func (e *MatchEngine) updateTeamStatus(t *models.Team) {
	for _, p := range t.StartingEleven {
		p.UpdateEnergy(t.CurrentTacticalPosture, e.rng)
	}
	t.RecalculateMatchStrength(false)
}

func (e *MatchEngine) processAttackPhase(side Side) {
	attacker := e.state.Team(side)
	defender := e.state.Team(side.Opponent())

	if e.rng.Float64() >= CreationChance(attacker, defender) {
		return
	}
	e.state.addChance(side)

	prob := e.goalProbability(side)
	if e.rng.Float64() < prob {
		scorer := NominalScorer(attacker)
		e.state.addGoal(side, scorer, prob)
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"minute": e.state.CurrentMinute,
				"team":   attacker.Name,
				"scorer": playerName(scorer),
				"prob":   prob,
			}).Debug("Goal")
		}
		return
	}

	if e.rng.Float64() > missedChanceLogThreshold {
		e.state.addEvent(Event{Kind: EventChance, Side: side, Probability: prob})
	}
}

func (e *MatchEngine) goalProbability(side Side) float64 {
	attacker := e.state.Team(side)
	defender := e.state.Team(side.Opponent())

	p := GoalChance(attacker, defender)
	if e.inGoalCooldown(side) {
		p *= goalCooldownFactor
	}
	return p
}

func (e *MatchEngine) inGoalCooldown(side Side) bool {
	last := e.state.LastGoalMinute(side)
	return last >= 0 && e.state.CurrentMinute-last <= goalCooldownMinutes
}

// CreationChance is the per-minute probability that attacker creates a chance
func CreationChance(attacker, defender *models.Team) float64 {
	total := attacker.MidfieldStrength + defender.MidfieldStrength
	if total <= 0 {
		total = 1
	}
	ratio := attacker.MidfieldStrength / total
	return ratio * creationPostureMultiplier[postureIndex(attacker.CurrentTacticalPosture)] * baseAttackRate
}

// GoalChance is the probability that a created chance is converted,
// before any goal cooldown
func GoalChance(attacker, defender *models.Team) float64 {
	attack := attacker.AttackStrength
	defense := defender.DefenseStrength
	switch defender.CurrentTacticalPosture {
	case models.Defensive:
		defense *= defensiveShapeBonus
	case models.VeryDefensive:
		defense *= veryDefensiveShapeBonus
	}

	total := attack + defense
	if total <= 0 {
		total = 1
	}
	return attack / total * finishingModifier * attacker.OffensiveEfficiency
}

// NominalScorer picks who is credited with a goal: the first forward in the
// lineup, else the first outfield starter, else the first starter
func NominalScorer(t *models.Team) *models.Player {
	if len(t.StartingEleven) == 0 {
		return nil
	}
	for _, p := range t.StartingEleven {
		if p.Position == models.Forward {
			return p
		}
	}
	for _, p := range t.StartingEleven {
		if p.Position != models.Goalkeeper {
			return p
		}
	}
	return t.StartingEleven[0]
}

func postureIndex(p models.TacticalPosture) int {
	if !p.Valid() {
		return int(models.Balanced)
	}
	return int(p)
}
