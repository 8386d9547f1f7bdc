package models

import (
	"fmt"
	"strings"
)

// Position represents a player's tactical position
type Position int

const (
	Goalkeeper Position = iota
	Defender
	Midfielder
	Forward
)

var positionNames = []string{"goalkeeper", "defender", "midfielder", "forward"}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("position(%d)", int(p))
	}
	return positionNames[p]
}

// Abbrev returns the short label used in generated names
func (p Position) Abbrev() string {
	switch p {
	case Goalkeeper:
		return "GK"
	case Defender:
		return "DF"
	case Midfielder:
		return "MF"
	case Forward:
		return "FW"
	}
	return "??"
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), positionNames)
	if err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}
	*p = Position(v)
	return nil
}

// TacticalPosture is the five-level aggressiveness setting of a team
type TacticalPosture int

const (
	VeryDefensive TacticalPosture = iota
	Defensive
	Balanced
	Offensive
	AllOutAttack
)

// PostureCount is the number of posture levels; posture tables are indexed by posture.
const PostureCount = 5

var postureNames = []string{"very_defensive", "defensive", "balanced", "offensive", "all_out_attack"}

func (t TacticalPosture) String() string {
	if !t.Valid() {
		return fmt.Sprintf("posture(%d)", int(t))
	}
	return postureNames[t]
}

// Valid reports whether the posture is one of the five levels
func (t TacticalPosture) Valid() bool {
	return t >= VeryDefensive && t <= AllOutAttack
}

// IsOffensive covers Offensive and AllOutAttack
func (t TacticalPosture) IsOffensive() bool {
	return t == Offensive || t == AllOutAttack
}

// IsDefensive covers Defensive and VeryDefensive
func (t TacticalPosture) IsDefensive() bool {
	return t == Defensive || t == VeryDefensive
}

func (t TacticalPosture) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TacticalPosture) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), postureNames)
	if err != nil {
		return fmt.Errorf("invalid tactical posture: %w", err)
	}
	*t = TacticalPosture(v)
	return nil
}

// TacticalStyle is the coach's macro playing style
type TacticalStyle int

const (
	StyleBalanced TacticalStyle = iota
	StylePossession
	StyleCounterAttack
	StyleHighPress
	StyleDirect
)

var styleNames = []string{"balanced", "possession", "counter_attack", "high_press", "direct"}

func (s TacticalStyle) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("style(%d)", int(s))
	}
	return styleNames[s]
}

func (s TacticalStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TacticalStyle) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), styleNames)
	if err != nil {
		return fmt.Errorf("invalid tactical style: %w", err)
	}
	*s = TacticalStyle(v)
	return nil
}

// CoachSpecialty is the coach's primary specialty
type CoachSpecialty int

const (
	OffensiveTactician CoachSpecialty = iota
	DefensiveMastermind
	Motivator
	YouthDeveloper
)

var specialtyNames = []string{"offensive_tactician", "defensive_mastermind", "motivator", "youth_developer"}

func (c CoachSpecialty) String() string {
	if c < 0 || int(c) >= len(specialtyNames) {
		return fmt.Sprintf("specialty(%d)", int(c))
	}
	return specialtyNames[c]
}

func (c CoachSpecialty) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CoachSpecialty) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), specialtyNames)
	if err != nil {
		return fmt.Errorf("invalid coach specialty: %w", err)
	}
	*c = CoachSpecialty(v)
	return nil
}

// LeagueStatus is the club's standing used by market valuations
type LeagueStatus int

const (
	StatusNormal LeagueStatus = iota
	StatusLeader
	StatusChampion
)

func (s LeagueStatus) String() string {
	switch s {
	case StatusLeader:
		return "leader"
	case StatusChampion:
		return "champion"
	}
	return "normal"
}

func (s LeagueStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ExpectationStatus compares league position with the season objective
type ExpectationStatus int

const (
	ExpectationMet ExpectationStatus = iota
	BelowExpectation
	AboveExpectation
)

func (e ExpectationStatus) String() string {
	switch e {
	case BelowExpectation:
		return "below"
	case AboveExpectation:
		return "above"
	}
	return "met"
}

func (e ExpectationStatus) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func parseEnum(s string, names []string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for i, n := range names {
		if n == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
