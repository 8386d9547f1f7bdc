package club

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/models"
)

// Outcome of a match from the club's point of view
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	}
	return "loss"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Points awarded in the league table
func (o Outcome) Points() int {
	switch o {
	case Win:
		return 3
	case Draw:
		return 1
	}
	return 0
}

// OutcomeOf classifies a scoreline
func OutcomeOf(goalsFor, goalsAgainst int) Outcome {
	switch {
	case goalsFor > goalsAgainst:
		return Win
	case goalsFor == goalsAgainst:
		return Draw
	}
	return Loss
}

var (
	// ErrMatchNotFinished is returned when evaluating a match still in play
	ErrMatchNotFinished = errors.New("match not finished")
	// ErrNotParticipant is returned when the club's squad did not play on the given side
	ErrNotParticipant = errors.New("club squad did not play on that side")
)

const (
	bigMarginGoals       = 3
	coherenceScoreValue  = 2.0
	lowMoraleThreshold   = 30.0
	contagionPlayers     = 2
	lowMoraleStreakLimit = 3

	leaderUnhappyMorale   = 40.0
	leaderComplaintMorale = 35.0
	leaderHappyMorale     = 75.0

	crisisInstability     = 80.0
	crisisTrust           = 40.0
	crisisWindowPoints    = 4
	ultimatumInstability  = 85.0
	ultimatumRecentPoints = 1

	mediaPressure     = 85.0
	dismissalPressure = 95.0
)

// Evaluation summarises what a single EvaluateMatch call did
type Evaluation struct {
	Outcome          Outcome `json:"outcome"`
	GoalsFor         int     `json:"goals_for"`
	GoalsAgainst     int     `json:"goals_against"`
	BigMatch         bool    `json:"big_match"`
	ResultScore      float64 `json:"result_score"`
	CoherenceScore   float64 `json:"coherence_score"`
	Coherent         bool    `json:"coherent"`
	TacticalFit      float64 `json:"tactical_fit"`
	LowMoralePlayers int     `json:"low_morale_players"`
	CrisisRisk       int     `json:"crisis_risk"`
	TrustDelta       float64 `json:"trust_delta"`
	InstabilityDelta float64 `json:"instability_delta"`
	PressureDelta    float64 `json:"pressure_delta"`
}

// EvaluateMatch folds a finished match into the club's long-running state.
// It must be called once per fixture the club played.
func (c *Club) EvaluateMatch(state *engine.MatchState, isHome, isBigMatch bool) (*Evaluation, error) {
	if state == nil {
		return nil, fmt.Errorf("evaluate %s: nil match state", c.Name)
	}
	if state.CurrentMinute < engine.MatchLength {
		return nil, fmt.Errorf("evaluate %s at minute %d: %w", c.Name, state.CurrentMinute, ErrMatchNotFinished)
	}
	side := engine.Away
	if isHome {
		side = engine.Home
	}
	if state.Team(side) != c.Squad {
		return nil, fmt.Errorf("evaluate %s as %s: %w", c.Name, side, ErrNotParticipant)
	}

	trustBefore, instabilityBefore, pressureBefore := c.BoardTrust, c.TeamInstability, c.CoachPressure
	c.MatchesPlayed++

	ev := &Evaluation{
		GoalsFor:     state.Score(side),
		GoalsAgainst: state.Score(side.Opponent()),
		BigMatch:     isBigMatch,
	}
	ev.Outcome = OutcomeOf(ev.GoalsFor, ev.GoalsAgainst)

	ev.ResultScore = c.scoreResult(ev)
	ev.Coherent, ev.CoherenceScore = c.scoreCoherence(ev, state.Chances(side))
	c.Squad.Coach.UpdateSpecialty(ev.Coherent, c.rng)

	c.adjustTrust(ev.ResultScore + ev.CoherenceScore)

	ev.TacticalFit = c.Squad.TacticalFit()
	c.applyTacticalFit(ev)

	ev.LowMoralePlayers = c.updatePlayerMorale(ev.Outcome, state)

	c.reduceInstability(ev.Outcome)

	if c.TeamInstability > 40 {
		c.adjustTrust(-c.TeamInstability / 20)
	}

	c.lockerRoomDynamics()

	ev.CrisisRisk = c.trackCrisis(ev)

	if c.UnderUltimatum {
		c.resolveUltimatum(ev.Outcome)
	} else {
		c.checkUltimatum()
	}

	c.updatePressure(ev)

	ev.TrustDelta = c.BoardTrust - trustBefore
	ev.InstabilityDelta = c.TeamInstability - instabilityBefore
	ev.PressureDelta = c.CoachPressure - pressureBefore

	c.logger.WithFields(logrus.Fields{
		"outcome":      ev.Outcome.String(),
		"score":        fmt.Sprintf("%d-%d", ev.GoalsFor, ev.GoalsAgainst),
		"big_match":    isBigMatch,
		"trust":        c.BoardTrust,
		"instability":  c.TeamInstability,
		"pressure":     c.CoachPressure,
		"crisis_risk":  c.CrisisRisk,
		"locker_room":  c.LockerRoomStatus(),
		"ultimatum":    c.UnderUltimatum,
		"coach_skill":  c.Squad.Coach.SpecialtyStrength,
		"result_score": ev.ResultScore,
	}).Info("Board evaluation")

	return ev, nil
}

// scoreResult applies step 1 and maintains the unbeaten streak
func (c *Club) scoreResult(ev *Evaluation) float64 {
	var score float64
	margin := ev.GoalsFor - ev.GoalsAgainst

	switch ev.Outcome {
	case Win:
		score = 3
		c.UnbeatenStreak++
		if margin >= bigMarginGoals {
			score++
		}
		if ev.BigMatch {
			score += 2
		}
	case Draw:
		score = 1
		c.UnbeatenStreak++
	case Loss:
		score = -3
		c.UnbeatenStreak = 0
		if ev.BigMatch {
			score -= 2
			if -margin >= bigMarginGoals {
				score--
			}
		}
	}
	return score
}

func (c *Club) scoreCoherence(ev *Evaluation, chances int) (bool, float64) {
	var coherent bool
	switch c.Squad.Coach.PrimarySpecialty {
	case models.OffensiveTactician:
		coherent = chances >= 5 || ev.GoalsFor >= 2
	case models.DefensiveMastermind:
		coherent = ev.GoalsAgainst <= 1
	default:
		// other specialties only need to avoid a heavy defeat and carry no score
		return ev.GoalsFor >= ev.GoalsAgainst-1, 0
	}
	if coherent {
		return true, coherenceScoreValue
	}
	return false, -coherenceScoreValue
}

func (c *Club) applyTacticalFit(ev *Evaluation) {
	if ev.TacticalFit < 50 && ev.Outcome == Loss {
		c.adjustInstability(2)
	}
	if ev.TacticalFit > 80 && ev.Outcome == Win {
		for _, p := range c.Squad.Players {
			p.UpdateMorale(3)
		}
	}
}

// updatePlayerMorale applies step 5 and returns how many players sit below
// the low-morale line afterwards
func (c *Club) updatePlayerMorale(outcome Outcome, state *engine.MatchState) int {
	preferred := c.Squad.Coach.PreferredPosture

	var base float64
	switch outcome {
	case Win:
		base = 2
	case Draw:
		base = 1
	default:
		base = -3
	}

	low := 0
	for _, p := range c.Squad.Players {
		delta := base + float64(state.GoalsBy(p))*3
		if postureSuitsPosition(preferred, p.Position) {
			delta++
		}
		p.UpdateMorale(delta)
		p.CheckLowMoraleStreak()

		if p.Morale < lowMoraleThreshold {
			low++
			if p.LowMoraleStreak >= lowMoraleStreakLimit {
				c.adjustInstability(2)
			}
		}
	}
	if low >= contagionPlayers {
		c.adjustInstability(3)
	}
	return low
}

func postureSuitsPosition(posture models.TacticalPosture, pos models.Position) bool {
	switch {
	case posture.IsOffensive():
		return pos == models.Forward
	case posture.IsDefensive():
		return pos == models.Defender
	}
	return false
}

func (c *Club) reduceInstability(outcome Outcome) {
	if outcome == Win {
		c.adjustInstability(-5)
	}
	if c.UnbeatenStreak >= 3 {
		c.adjustInstability(-3)
	}
	coach := c.Squad.Coach
	if coach.PrimarySpecialty == models.Motivator && coach.SpecialtyStrength > 90 {
		c.adjustInstability(-2)
	}
	if c.Squad.AverageMorale() > 75 {
		c.adjustInstability(-2)
	}
}

func (c *Club) lockerRoomDynamics() {
	unhappy := 0
	for _, p := range c.Squad.Players {
		if !p.IsLeader() {
			continue
		}
		switch {
		case p.Morale < leaderUnhappyMorale:
			unhappy++
			c.adjustInstability(3)
			if p.Morale < leaderComplaintMorale && c.chance(0.20) {
				c.emit(Event{Kind: EventComplaint, Player: p.Name, Magnitude: p.Morale})
			}
		case p.Morale > leaderHappyMorale:
			c.adjustInstability(-2)
			c.adjustTrust(0.5)
		}
	}

	if unhappy >= 2 && c.chance(0.15) {
		c.adjustInstability(5)
		c.adjustPressure(3)
		c.emit(Event{Kind: EventDressingRoomSplit, Magnitude: float64(unhappy)})
		c.logger.WithField("unhappy_leaders", unhappy).Warn("Dressing room split")
	}
}

// trackCrisis applies step 9 and returns the crisis risk it computed
func (c *Club) trackCrisis(ev *Evaluation) int {
	c.recordPoints(ev.Outcome.Points())

	risk := 0
	if c.TeamInstability > crisisInstability {
		risk++
	}
	// a partial window early in the season still counts
	if c.RecentPointsSum(recentWindowSize) <= crisisWindowPoints {
		risk++
	}
	if c.BoardTrust < crisisTrust {
		risk++
	}
	c.CrisisRisk = risk

	if c.TeamInstability > crisisInstability && ev.Outcome == Loss {
		c.adjustTrust(-4)
		c.adjustInstability(3)
	}

	if !c.UnderUltimatum {
		var p float64
		switch {
		case risk >= 3:
			p = 0.50
		case risk == 2:
			p = 0.25
		}
		if p > 0 && c.chance(p) {
			kind := CrisisKinds[c.rng.Intn(len(CrisisKinds))]
			c.adjustTrust(-2)
			c.adjustInstability(2)
			c.emit(Event{Kind: EventCrisis, Crisis: kind, Magnitude: float64(risk)})
			c.logger.WithFields(logrus.Fields{"crisis": kind.String(), "risk": risk}).Warn("Crisis event")
		}
	}

	if c.consecutiveLosses(3) && ev.TacticalFit < 60 && c.chance(0.20) {
		c.adjustPressure(3)
		c.adjustInstability(2)
		c.emit(Event{Kind: EventStyleQuestioned, Magnitude: ev.TacticalFit})
	}
	return risk
}

func (c *Club) consecutiveLosses(n int) bool {
	if len(c.RecentPoints) < n {
		return false
	}
	for _, p := range c.lastResults(n) {
		if p != 0 {
			return false
		}
	}
	return true
}

// UltimatumTrustThreshold is the trust level below which the board may issue
// an ultimatum; more ambitious clubs lose patience sooner
func (c *Club) UltimatumTrustThreshold() float64 {
	switch {
	case c.ExpectationTier >= 4:
		return 40
	case c.ExpectationTier == 3:
		return 35
	}
	return 30
}

func (c *Club) checkUltimatum() {
	if c.TeamInstability <= ultimatumInstability || c.BoardTrust >= c.UltimatumTrustThreshold() {
		return
	}
	if len(c.RecentPoints) < 3 || c.RecentPointsSum(3) > ultimatumRecentPoints {
		return
	}
	c.UnderUltimatum = true
	c.emit(Event{Kind: EventUltimatumIssued, Magnitude: c.BoardTrust})
	c.logger.WithFields(logrus.Fields{
		"trust":       c.BoardTrust,
		"instability": c.TeamInstability,
	}).Warn("Board issued ultimatum")
}

func (c *Club) resolveUltimatum(outcome Outcome) {
	switch outcome {
	case Win:
		c.adjustTrust(6)
		c.adjustInstability(-8)
		c.UnderUltimatum = false
		c.emit(Event{Kind: EventUltimatumResolved, Magnitude: c.BoardTrust})
		c.logger.Info("Ultimatum lifted after win")
	case Draw:
		c.adjustTrust(-2)
		c.emit(Event{Kind: EventUltimatumExtended, Magnitude: c.BoardTrust})
	case Loss:
		c.BoardTrust = 0
		c.emit(Event{Kind: EventUltimatumFailed})
		c.logger.Warn("Ultimatum failed, board trust collapsed")
	}
}

func (c *Club) updatePressure(ev *Evaluation) {
	var delta float64
	switch ev.Outcome {
	case Win:
		delta = -4
	case Draw:
		delta = 1
	case Loss:
		delta = 5
	}
	if c.TeamInstability > 70 {
		delta += 2
	}
	if c.BoardTrust < 40 {
		delta += 3
	}
	if c.ExpectationTier >= 4 && ev.Outcome == Loss {
		delta++
	}
	if len(c.RecentPoints) >= 3 && !c.hasWin(c.lastResults(3)) {
		delta += 4
	}
	if len(c.RecentPoints) >= 2 && c.allWins(c.lastResults(2)) {
		delta -= 6
	}
	if ev.ResultScore >= 4 {
		delta -= 8
	}
	if ev.BigMatch && ev.Outcome == Win {
		delta -= 6
	}
	c.adjustPressure(delta)

	if c.CoachPressure > mediaPressure && c.chance(0.20) {
		c.emit(Event{Kind: EventMediaPressure, Magnitude: c.CoachPressure})
	}
	if c.CoachPressure > dismissalPressure {
		c.emit(Event{Kind: EventDismissalConsidered, Magnitude: c.CoachPressure})
		c.logger.WithField("pressure", c.CoachPressure).Warn("Board considering dismissal")
	}
}

func (c *Club) hasWin(points []int) bool {
	for _, p := range points {
		if p == Win.Points() {
			return true
		}
	}
	return false
}

func (c *Club) allWins(points []int) bool {
	for _, p := range points {
		if p != Win.Points() {
			return false
		}
	}
	return len(points) > 0
}
