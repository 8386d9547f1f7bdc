package engine

import "github.com/stitts-dev/club-sim/internal/models"

const noGoal = -1

// MatchState holds the running state of a match. It is mutated only by the
// MatchEngine and is read-only once the match has finished.
type MatchState struct {
	HomeTeam      *models.Team `json:"-"`
	AwayTeam      *models.Team `json:"-"`
	HomeScore     int          `json:"home_score"`
	AwayScore     int          `json:"away_score"`
	CurrentMinute int          `json:"current_minute"`
	Events        []Event      `json:"events"`

	// Every created chance counts, scored or missed
	HomeChances int `json:"home_chances"`
	AwayChances int `json:"away_chances"`

	LastHomeGoalMinute int `json:"last_home_goal_minute"`
	LastAwayGoalMinute int `json:"last_away_goal_minute"`

	GoalScorers map[*models.Player]int `json:"-"`
}

func newMatchState(home, away *models.Team) *MatchState {
	return &MatchState{
		HomeTeam:           home,
		AwayTeam:           away,
		LastHomeGoalMinute: noGoal,
		LastAwayGoalMinute: noGoal,
		GoalScorers:        make(map[*models.Player]int),
	}
}

// Team returns the team playing on side
func (s *MatchState) Team(side Side) *models.Team {
	if side == Away {
		return s.AwayTeam
	}
	return s.HomeTeam
}

// Score returns the goals scored by side
func (s *MatchState) Score(side Side) int {
	if side == Away {
		return s.AwayScore
	}
	return s.HomeScore
}

// Chances returns the chances created by side
func (s *MatchState) Chances(side Side) int {
	if side == Away {
		return s.AwayChances
	}
	return s.HomeChances
}

// LastGoalMinute returns the minute of side's latest goal, or -1
func (s *MatchState) LastGoalMinute(side Side) int {
	if side == Away {
		return s.LastAwayGoalMinute
	}
	return s.LastHomeGoalMinute
}

// GoalsBy returns how many goals p scored in this match
func (s *MatchState) GoalsBy(p *models.Player) int {
	return s.GoalScorers[p]
}

// EventsSince returns events appended at or after index i
func (s *MatchState) EventsSince(i int) []Event {
	if i >= len(s.Events) {
		return nil
	}
	if i < 0 {
		i = 0
	}
	return s.Events[i:]
}

func (s *MatchState) incrementMinute() {
	s.CurrentMinute++
}

func (s *MatchState) addChance(side Side) {
	if side == Away {
		s.AwayChances++
		return
	}
	s.HomeChances++
}

func (s *MatchState) addGoal(side Side, scorer *models.Player, probability float64) {
	if side == Away {
		s.AwayScore++
		s.LastAwayGoalMinute = s.CurrentMinute
	} else {
		s.HomeScore++
		s.LastHomeGoalMinute = s.CurrentMinute
	}
	if scorer != nil {
		s.GoalScorers[scorer]++
	}
	s.addEvent(Event{
		Kind:        EventGoal,
		Side:        side,
		Player:      scorer,
		PlayerName:  playerName(scorer),
		Probability: probability,
	})
}

func (s *MatchState) addEvent(e Event) {
	e.Minute = s.CurrentMinute
	if e.Team == "" {
		if t := s.Team(e.Side); t != nil {
			e.Team = t.Name
		}
	}
	e.HomeScore = s.HomeScore
	e.AwayScore = s.AwayScore
	s.Events = append(s.Events, e)
}

// MatchResult is a detached summary of a finished match
type MatchResult struct {
	HomeTeam    string         `json:"home_team"`
	AwayTeam    string         `json:"away_team"`
	HomeScore   int            `json:"home_score"`
	AwayScore   int            `json:"away_score"`
	HomeChances int            `json:"home_chances"`
	AwayChances int            `json:"away_chances"`
	Minutes     int            `json:"minutes"`
	Events      []Event        `json:"events"`
	Scorers     map[string]int `json:"scorers"`
}

// Result copies the state into a value that holds no team references
func (s *MatchState) Result() MatchResult {
	events := make([]Event, len(s.Events))
	for i, e := range s.Events {
		e.Player = nil
		e.PlayerIn = nil
		events[i] = e
	}
	scorers := make(map[string]int, len(s.GoalScorers))
	for p, n := range s.GoalScorers {
		scorers[p.Name] += n
	}
	r := MatchResult{
		HomeScore:   s.HomeScore,
		AwayScore:   s.AwayScore,
		HomeChances: s.HomeChances,
		AwayChances: s.AwayChances,
		Minutes:     s.CurrentMinute,
		Events:      events,
		Scorers:     scorers,
	}
	if s.HomeTeam != nil {
		r.HomeTeam = s.HomeTeam.Name
	}
	if s.AwayTeam != nil {
		r.AwayTeam = s.AwayTeam.Name
	}
	return r
}
