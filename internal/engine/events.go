package engine

import (
	"fmt"

	"github.com/stitts-dev/club-sim/internal/models"
)

// Side identifies home or away within a match
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Away {
		return "away"
	}
	return "home"
}

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventKind tags a match event
type EventKind int

const (
	EventGoal EventKind = iota
	EventChance
	EventSubstitution
	EventSubstitutionFailed
	EventTacticalChange
	EventFullTime
)

var eventKindNames = []string{"goal", "chance", "substitution", "substitution_failed", "tactical_change", "full_time"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("event(%d)", int(k))
	}
	return eventKindNames[k]
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is one minute-stamped entry in the match log. Fields beyond Kind,
// Minute, Side and Team are populated according to Kind.
type Event struct {
	Kind   EventKind `json:"kind"`
	Minute int       `json:"minute"`
	Side   Side      `json:"side"`
	Team   string    `json:"team"`

	// Goal scorer, or the player leaving on substitutions
	Player     *models.Player `json:"-"`
	PlayerName string         `json:"player,omitempty"`
	// Player entering on substitutions
	PlayerIn     *models.Player `json:"-"`
	PlayerInName string         `json:"player_in,omitempty"`

	// Posture is only meaningful on tactical changes
	Posture     models.TacticalPosture `json:"posture"`
	Probability float64                `json:"probability,omitempty"`

	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

func playerName(p *models.Player) string {
	if p == nil {
		return ""
	}
	return p.Name
}
