package models

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitts-dev/club-sim/internal/random"
)

const (
	maxEnergy = 100.0

	defaultMorale     = 70.0
	defaultInfluence  = 50.0
	defaultAge        = 25
	lowMoraleLimit    = 30.0
	unhappyMorale     = 40.0
	happyMorale       = 75.0
	marketValueFactor = 40.0
)

// per-minute base energy drain by position
var energyDrain = map[Position]float64{
	Goalkeeper: 0.35,
	Defender:   0.35,
	Midfielder: 0.50,
	Forward:    0.45,
}

// effort factor by posture, VeryDefensive..AllOutAttack
var postureEffort = [PostureCount]float64{0.85, 0.95, 1.0, 1.2, 1.5}

// Player represents a football player
type Player struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Position            Position        `json:"position"`
	OverallRating       int             `json:"overall_rating"`
	Age                 int             `json:"age"`
	Technical           int             `json:"technical"`
	Physical            int             `json:"physical"`
	Mental              int             `json:"mental"`
	Energy              float64         `json:"energy"`
	Morale              float64         `json:"morale"`
	LockerRoomInfluence float64         `json:"locker_room_influence"`
	LowMoraleStreak     int             `json:"low_morale_streak"`
	MarketValue         decimal.Decimal `json:"market_value"`
	StayDesire          float64         `json:"stay_desire"`
}

// NewPlayer creates a player with neutral defaults; detail attributes mirror the overall rating
func NewPlayer(name string, position Position, overallRating int) *Player {
	rating := clampInt(overallRating, 0, 100)
	attr := clampInt(rating, 1, 99)
	p := &Player{
		ID:                  uuid.New(),
		Name:                name,
		Position:            position,
		OverallRating:       rating,
		Age:                 defaultAge,
		Technical:           attr,
		Physical:            attr,
		Mental:              attr,
		Energy:              maxEnergy,
		Morale:              defaultMorale,
		LockerRoomInfluence: defaultInfluence,
		StayDesire:          100,
	}
	p.CalculateMarketValue(StatusNormal)
	return p
}

// ResetForMatch restores full energy before kickoff
func (p *Player) ResetForMatch() {
	p.Energy = maxEnergy
}

// UpdateEnergy drains energy for one simulated minute
func (p *Player) UpdateEnergy(posture TacticalPosture, rng random.Source) {
	drain := energyDrain[p.Position] * postureEffortFactor(posture) * (0.8 + rng.Float64()*0.4)
	p.Energy = Clamp(p.Energy-drain, 0, maxEnergy)
}

// EffectiveOverall scales the overall rating by morale: 0 -> 0.85x, 100 -> 1.35x
func (p *Player) EffectiveOverall() float64 {
	return float64(p.OverallRating) * (0.85 + p.Morale/200.0)
}

// UpdateMorale adds delta and clamps to [0,100]
func (p *Player) UpdateMorale(delta float64) {
	p.Morale = Clamp(p.Morale+delta, 0, 100)
}

// CheckLowMoraleStreak is called once per evaluated match
func (p *Player) CheckLowMoraleStreak() {
	if p.Morale < lowMoraleLimit {
		p.LowMoraleStreak++
		return
	}
	p.LowMoraleStreak = 0
}

// HasLowMorale reports morale below the streak threshold
func (p *Player) HasLowMorale() bool {
	return p.Morale < lowMoraleLimit
}

// CalculateMarketValue recomputes and stores the player's market value
func (p *Player) CalculateMarketValue(status LeagueStatus) decimal.Decimal {
	r := float64(p.OverallRating)
	value := math.Pow(r, 3) * marketValueFactor *
		ageMultiplier(p.Age) *
		statusMultiplier(status) *
		(0.8 + p.Morale/250.0)
	p.MarketValue = decimal.NewFromFloat(value).Round(0)
	return p.MarketValue
}

// UpdateStayDesire recomputes the player's willingness to stay
func (p *Player) UpdateStayDesire(instability, pressure float64, expectation ExpectationStatus, isStarter bool) float64 {
	desire := 100.0 - instability*0.5
	if pressure > 70 {
		desire -= 10
	}
	switch expectation {
	case BelowExpectation:
		desire -= 5
	case AboveExpectation:
		desire += 5
	}
	if p.Morale < unhappyMorale {
		desire -= 20
	} else if p.Morale > happyMorale {
		desire += 10
	}
	if !isStarter {
		desire -= 15
	}
	p.StayDesire = Clamp(desire, 0, 100)
	return p.StayDesire
}

// IsLeader reports whether the player carries locker-room weight
func (p *Player) IsLeader() bool {
	return p.LockerRoomInfluence > 70
}

func ageMultiplier(age int) float64 {
	switch {
	case age < 22:
		return 1.5
	case age < 26:
		return 1.2
	case age > 32:
		return 0.6
	}
	return 1.0
}

func statusMultiplier(status LeagueStatus) float64 {
	switch status {
	case StatusLeader:
		return 1.1
	case StatusChampion:
		return 1.2
	}
	return 1.0
}

func postureEffortFactor(posture TacticalPosture) float64 {
	if !posture.Valid() {
		return 1.0
	}
	return postureEffort[posture]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
