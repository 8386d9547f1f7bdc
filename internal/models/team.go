package models

import (
	"errors"
	"fmt"
)

// StartingElevenSize is the required number of starters
const StartingElevenSize = 11

const (
	minSectorStrength     = 10.0
	substitutionSmoothing = 0.5
	minEfficiency         = 0.80
	maxEfficiency         = 1.20
)

// scalar strength multiplier by posture, VeryDefensive..AllOutAttack
var postureStrengthMultiplier = [PostureCount]float64{0.7, 0.85, 1.0, 1.15, 1.3}

// offensive efficiency posture factor, VeryDefensive..AllOutAttack
var postureEfficiencyFactor = [PostureCount]float64{0.85, 0.95, 1.0, 1.1, 1.2}

// attribute weights (technical, physical, mental) per coach style
var styleWeights = map[TacticalStyle][3]float64{
	StyleBalanced:      {1.0 / 3, 1.0 / 3, 1.0 / 3},
	StylePossession:    {0.6, 0.1, 0.3},
	StyleCounterAttack: {0.2, 0.5, 0.3},
	StyleHighPress:     {0.2, 0.6, 0.2},
	StyleDirect:        {0.1, 0.6, 0.3},
}

// ErrInvalidLineup is returned when a starting eleven cannot be applied
var ErrInvalidLineup = errors.New("invalid lineup")

// Team is a squad with its coach, lineup and derived match strengths
type Team struct {
	Name                   string          `json:"name"`
	Coach                  *Coach          `json:"coach"`
	Players                []*Player       `json:"players"`
	StartingEleven         []*Player       `json:"starting_eleven"`
	Bench                  []*Player       `json:"bench"`
	CurrentTacticalPosture TacticalPosture `json:"current_tactical_posture"`

	MatchStrength float64 `json:"match_strength"`

	// Effective-overall sums per sector before energy scaling
	BaseDefense  float64 `json:"base_defense"`
	BaseMidfield float64 `json:"base_midfield"`
	BaseAttack   float64 `json:"base_attack"`

	// Energy-scaled sector strengths used by the match engine
	DefenseStrength  float64 `json:"defense_strength"`
	MidfieldStrength float64 `json:"midfield_strength"`
	AttackStrength   float64 `json:"attack_strength"`

	OffensiveEfficiency float64 `json:"offensive_efficiency"`
	Instability         float64 `json:"instability"`
}

// NewTeam creates a team whose initial posture follows the coach's preference
func NewTeam(name string, coach *Coach) *Team {
	posture := Balanced
	if coach != nil {
		posture = coach.PreferredPosture
	}
	return &Team{
		Name:                   name,
		Coach:                  coach,
		CurrentTacticalPosture: posture,
		OffensiveEfficiency:    1.0,
	}
}

// AddPlayer appends to the roster; with a lineup in place the player joins the bench
func (t *Team) AddPlayer(p *Player) {
	t.Players = append(t.Players, p)
	if len(t.StartingEleven) > 0 {
		t.Bench = append(t.Bench, p)
	}
}

// SetStartingEleven replaces the starters. The list must hold exactly 11
// distinct roster members; on failure the team is left untouched.
func (t *Team) SetStartingEleven(starters []*Player) error {
	if len(starters) != StartingElevenSize {
		return fmt.Errorf("%w: starting eleven must have exactly %d players, got %d",
			ErrInvalidLineup, StartingElevenSize, len(starters))
	}

	seen := make(map[*Player]bool, len(starters))
	for _, p := range starters {
		if p == nil {
			return fmt.Errorf("%w: nil player in starting eleven", ErrInvalidLineup)
		}
		if seen[p] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidLineup, p.Name)
		}
		if t.rosterIndex(p) < 0 {
			return fmt.Errorf("%w: %s is not in the %s roster", ErrInvalidLineup, p.Name, t.Name)
		}
		seen[p] = true
	}

	t.StartingEleven = append([]*Player(nil), starters...)
	t.Bench = t.Bench[:0:0]
	for _, p := range t.Players {
		if !seen[p] {
			t.Bench = append(t.Bench, p)
		}
	}

	t.RecalculateMatchStrength(false)
	return nil
}

// ApplySubstitution swaps a starter for a bench player. It reports false and
// changes nothing unless out is starting and in is on the bench.
func (t *Team) ApplySubstitution(out, in *Player) bool {
	outIdx := indexOf(t.StartingEleven, out)
	if outIdx < 0 {
		return false
	}
	inIdx := indexOf(t.Bench, in)
	if inIdx < 0 {
		return false
	}

	t.StartingEleven[outIdx] = in
	t.Bench = append(t.Bench[:inIdx], t.Bench[inIdx+1:]...)
	t.Bench = append(t.Bench, out)

	t.RecalculateMatchStrength(true)
	return true
}

// ChangeTacticalPosture sets the posture and recalculates strength
func (t *Team) ChangeTacticalPosture(posture TacticalPosture) {
	t.CurrentTacticalPosture = posture
	t.RecalculateMatchStrength(false)
}

// IsStarter reports whether p is in the starting eleven
func (t *Team) IsStarter(p *Player) bool {
	return indexOf(t.StartingEleven, p) >= 0
}

// IsOnBench reports whether p is on the bench
func (t *Team) IsOnBench(p *Player) bool {
	return indexOf(t.Bench, p) >= 0
}

// ReplacePlayer swaps old for replacement in the roster, keeping its lineup slot
func (t *Team) ReplacePlayer(old, replacement *Player) bool {
	idx := t.rosterIndex(old)
	if idx < 0 {
		return false
	}
	t.Players[idx] = replacement
	if i := indexOf(t.StartingEleven, old); i >= 0 {
		t.StartingEleven[i] = replacement
	}
	if i := indexOf(t.Bench, old); i >= 0 {
		t.Bench[i] = replacement
	}
	t.RecalculateMatchStrength(false)
	return true
}

// RemovePlayer drops a bench or unselected player from the roster. Starters
// cannot be removed without breaking the eleven.
func (t *Team) RemovePlayer(p *Player) bool {
	idx := t.rosterIndex(p)
	if idx < 0 || t.IsStarter(p) {
		return false
	}
	t.Players = append(t.Players[:idx], t.Players[idx+1:]...)
	if i := indexOf(t.Bench, p); i >= 0 {
		t.Bench = append(t.Bench[:i], t.Bench[i+1:]...)
	}
	return true
}

// SetInstability mirrors the owning club's instability into the team
func (t *Team) SetInstability(v float64) {
	t.Instability = Clamp(v, 0, 100)
}

// AverageEnergy of the starting eleven; zero without a lineup
func (t *Team) AverageEnergy() float64 {
	if len(t.StartingEleven) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range t.StartingEleven {
		total += p.Energy
	}
	return total / float64(len(t.StartingEleven))
}

// AverageMorale across the whole roster
func (t *Team) AverageMorale() float64 {
	if len(t.Players) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range t.Players {
		total += p.Morale
	}
	return total / float64(len(t.Players))
}

// RecalculateMatchStrength recomputes sector strengths and the scalar match
// strength. Substitutions blend the new scalar with the previous one.
func (t *Team) RecalculateMatchStrength(isSubstitution bool) {
	avgEnergy := t.AverageEnergy()
	t.updateSectors(avgEnergy)

	fresh := t.rawMatchStrength(avgEnergy)
	if isSubstitution {
		t.MatchStrength += (fresh - t.MatchStrength) * substitutionSmoothing
		return
	}
	t.MatchStrength = fresh
}

func (t *Team) rawMatchStrength(avgEnergy float64) float64 {
	base := 0.0
	for _, p := range t.StartingEleven {
		base += float64(p.OverallRating)
	}
	energyMult := 0.6 + avgEnergy/250.0
	return base * postureStrength(t.CurrentTacticalPosture) * energyMult
}

func (t *Team) updateSectors(avgEnergy float64) {
	var def, mid, att float64
	for _, p := range t.StartingEleven {
		switch p.Position {
		case Goalkeeper, Defender:
			def += p.EffectiveOverall()
		case Midfielder:
			mid += p.EffectiveOverall()
		case Forward:
			att += p.EffectiveOverall()
		}
	}
	t.BaseDefense, t.BaseMidfield, t.BaseAttack = def, mid, att

	scale := avgEnergy / 100.0
	t.DefenseStrength = floorSector(def * scale)
	t.MidfieldStrength = floorSector(mid * scale)
	t.AttackStrength = floorSector(att * scale)
}

// UpdateOffensiveEfficiency recomputes the per-minute attack multiplier
// against the opponent's current defense. Result is within [0.80, 1.20].
func (t *Team) UpdateOffensiveEfficiency(opponentDefense float64) float64 {
	total := t.AttackStrength + opponentDefense
	if total <= 0 {
		total = 1
	}
	ratio := t.AttackStrength / total
	energyFactor := 0.9 + t.AverageEnergy()/500.0

	raw := ratio * energyFactor * efficiencyPosture(t.CurrentTacticalPosture) * 2.0
	raw *= 1 - t.Instability/500.0

	t.OffensiveEfficiency = Clamp(raw, minEfficiency, maxEfficiency)
	return t.OffensiveEfficiency
}

// TacticalFit scores 0-100 how well the squad suits the coach: starters'
// attributes weighted by the coach's style, adjusted by how far the current
// posture sits from the coach's preferred one.
func (t *Team) TacticalFit() float64 {
	players := t.StartingEleven
	if len(players) == 0 {
		players = t.Players
	}
	if len(players) == 0 || t.Coach == nil {
		return 50
	}

	w, ok := styleWeights[t.Coach.Style]
	if !ok {
		w = styleWeights[StyleBalanced]
	}
	total := 0.0
	for _, p := range players {
		total += w[0]*float64(p.Technical) + w[1]*float64(p.Physical) + w[2]*float64(p.Mental)
	}
	fit := total / float64(len(players))

	distance := int(t.CurrentTacticalPosture) - int(t.Coach.PreferredPosture)
	if distance < 0 {
		distance = -distance
	}
	if distance == 0 {
		fit += 10
	} else {
		fit -= 5 * float64(distance)
	}
	return Clamp(fit, 0, 100)
}

// WageBill is the monthly wage cost of the roster: sum of overall^2 * 25
func (t *Team) WageBill() float64 {
	total := 0.0
	for _, p := range t.Players {
		r := float64(p.OverallRating)
		total += r * r * 25
	}
	return total
}

func (t *Team) rosterIndex(p *Player) int {
	return indexOf(t.Players, p)
}

func indexOf(list []*Player, p *Player) int {
	if p == nil {
		return -1
	}
	for i, candidate := range list {
		if candidate == p {
			return i
		}
	}
	return -1
}

func floorSector(v float64) float64 {
	if v < minSectorStrength {
		return minSectorStrength
	}
	return v
}

func postureStrength(p TacticalPosture) float64 {
	if !p.Valid() {
		return 1.0
	}
	return postureStrengthMultiplier[p]
}

func efficiencyPosture(p TacticalPosture) float64 {
	if !p.Valid() {
		return 1.0
	}
	return postureEfficiencyFactor[p]
}
