package models

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTeam returns a 1-4-4-2 of 70-rated starters plus three reserves
func newTestTeam(t *testing.T) *Team {
	t.Helper()

	team := NewTeam("Testers", NewCoach("Coach", Balanced, Motivator))
	shape := []struct {
		pos   Position
		count int
	}{{Goalkeeper, 1}, {Defender, 4}, {Midfielder, 4}, {Forward, 2}}
	for _, s := range shape {
		for i := 0; i < s.count; i++ {
			team.AddPlayer(NewPlayer(fmt.Sprintf("%s%d", s.pos.Abbrev(), i), s.pos, 70))
		}
	}
	starters := append([]*Player(nil), team.Players...)

	team.AddPlayer(NewPlayer("Super Sub", Forward, 90))
	team.AddPlayer(NewPlayer("Reserve MF", Midfielder, 60))
	team.AddPlayer(NewPlayer("Reserve DF", Defender, 50))

	require.NoError(t, team.SetStartingEleven(starters))
	return team
}

func TestSetStartingEleven_RejectsWrongSize(t *testing.T) {
	team := newTestTeam(t)
	startersBefore := append([]*Player(nil), team.StartingEleven...)
	benchBefore := append([]*Player(nil), team.Bench...)
	strengthBefore := team.MatchStrength

	for _, n := range []int{0, 10, 12} {
		list := make([]*Player, 0, n)
		for i := 0; i < n && i < len(team.Players); i++ {
			list = append(list, team.Players[i])
		}
		err := team.SetStartingEleven(list)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidLineup)
	}

	assert.Equal(t, startersBefore, team.StartingEleven)
	assert.Equal(t, benchBefore, team.Bench)
	assert.Equal(t, strengthBefore, team.MatchStrength)
}

func TestSetStartingEleven_RejectsDuplicatesAndStrangers(t *testing.T) {
	team := newTestTeam(t)

	dup := append([]*Player(nil), team.StartingEleven[:10]...)
	dup = append(dup, team.StartingEleven[0])
	assert.ErrorIs(t, team.SetStartingEleven(dup), ErrInvalidLineup)

	stranger := append([]*Player(nil), team.StartingEleven[:10]...)
	stranger = append(stranger, NewPlayer("Outsider", Forward, 99))
	assert.ErrorIs(t, team.SetStartingEleven(stranger), ErrInvalidLineup)
}

func TestSetStartingEleven_BenchIsRosterMinusStarters(t *testing.T) {
	team := newTestTeam(t)

	// start the reserves instead of three regulars
	lineup := append([]*Player(nil), team.Players[3:14]...)
	require.NoError(t, team.SetStartingEleven(lineup))

	assert.Len(t, team.StartingEleven, StartingElevenSize)
	assert.ElementsMatch(t, team.Players[0:3], team.Bench)
	for _, p := range team.Players {
		assert.NotEqual(t, team.IsStarter(p), team.IsOnBench(p), "%s must be in exactly one group", p.Name)
	}
}

func TestApplySubstitution_InvalidLeavesTeamUnchanged(t *testing.T) {
	team := newTestTeam(t)
	starter := team.StartingEleven[5]
	reserve := team.Bench[0]

	startersBefore := append([]*Player(nil), team.StartingEleven...)
	benchBefore := append([]*Player(nil), team.Bench...)
	strengthBefore := team.MatchStrength

	assert.False(t, team.ApplySubstitution(reserve, starter), "out must be a starter")
	assert.False(t, team.ApplySubstitution(starter, team.StartingEleven[6]), "in must be on the bench")
	assert.False(t, team.ApplySubstitution(NewPlayer("Ghost", Forward, 80), reserve))
	assert.False(t, team.ApplySubstitution(starter, nil))

	assert.Equal(t, startersBefore, team.StartingEleven)
	assert.Equal(t, benchBefore, team.Bench)
	assert.Equal(t, strengthBefore, team.MatchStrength)
}

func TestApplySubstitution_SwapsAndSmoothsStrength(t *testing.T) {
	team := newTestTeam(t)
	out := team.StartingEleven[10]
	in := team.Bench[0] // 90-rated forward

	old := team.MatchStrength
	require.True(t, team.ApplySubstitution(out, in))

	fresh := team.rawMatchStrength(team.AverageEnergy())
	assert.True(t, team.IsStarter(in))
	assert.True(t, team.IsOnBench(out))
	assert.Len(t, team.StartingEleven, StartingElevenSize)

	assert.Greater(t, fresh, old)
	assert.Greater(t, team.MatchStrength, old)
	assert.Less(t, team.MatchStrength, fresh)
	assert.InDelta(t, old+(fresh-old)*0.5, team.MatchStrength, 1e-9)
}

func TestRecalculateMatchStrength(t *testing.T) {
	team := newTestTeam(t)

	// 11 * 70 = 770 base, balanced 1.0, full energy 0.6 + 100/250 = 1.0
	assert.InDelta(t, 770.0, team.MatchStrength, 1e-9)

	// morale 70 -> effective overall 70 * 1.2 = 84
	assert.InDelta(t, 5*84.0, team.DefenseStrength, 1e-9)
	assert.InDelta(t, 4*84.0, team.MidfieldStrength, 1e-9)
	assert.InDelta(t, 2*84.0, team.AttackStrength, 1e-9)

	for _, p := range team.StartingEleven {
		p.Energy = 50
	}
	team.ChangeTacticalPosture(AllOutAttack)
	assert.InDelta(t, 770*1.3*0.8, team.MatchStrength, 1e-9)
	assert.InDelta(t, 2*84.0*0.5, team.AttackStrength, 1e-9)
	assert.InDelta(t, 2*84.0, team.BaseAttack, 1e-9)
}

func TestSectorStrengthFloor(t *testing.T) {
	team := newTestTeam(t)
	for _, p := range team.StartingEleven {
		p.Energy = 0
	}
	team.RecalculateMatchStrength(false)

	assert.Equal(t, 10.0, team.DefenseStrength)
	assert.Equal(t, 10.0, team.MidfieldStrength)
	assert.Equal(t, 10.0, team.AttackStrength)

	empty := NewTeam("Empty", NewCoach("Nobody", Balanced, Motivator))
	empty.RecalculateMatchStrength(false)
	assert.Equal(t, 10.0, empty.AttackStrength)
	assert.Equal(t, 0.0, empty.MatchStrength)
}

func TestUpdateOffensiveEfficiency_AlwaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	team := newTestTeam(t)

	inputs := []float64{0, 10, 100, 1e6, math.MaxFloat64 / 4}
	for _, def := range inputs {
		for _, posture := range []TacticalPosture{VeryDefensive, Balanced, AllOutAttack} {
			for _, instability := range []float64{0, 50, 100} {
				team.CurrentTacticalPosture = posture
				team.SetInstability(instability)
				for _, p := range team.StartingEleven {
					p.Energy = rng.Float64() * 100
				}
				team.RecalculateMatchStrength(false)

				eff := team.UpdateOffensiveEfficiency(def)
				assert.GreaterOrEqual(t, eff, 0.80)
				assert.LessOrEqual(t, eff, 1.20)
				assert.Equal(t, eff, team.OffensiveEfficiency)
			}
		}
	}
}

func TestUpdateOffensiveEfficiency_Formula(t *testing.T) {
	team := newTestTeam(t)

	// attack 168 vs defense 168: ratio 0.5, energy factor 1.1, balanced 1.0 -> 1.1
	eff := team.UpdateOffensiveEfficiency(168)
	assert.InDelta(t, 1.1, eff, 1e-9)

	// instability 100 -> x0.8 = 0.88
	team.SetInstability(100)
	eff = team.UpdateOffensiveEfficiency(168)
	assert.InDelta(t, 0.88, eff, 1e-9)
}

func TestTacticalFit(t *testing.T) {
	team := newTestTeam(t)

	// attributes all 70, posture matches coach preference
	assert.InDelta(t, 80.0, team.TacticalFit(), 1e-9)

	team.CurrentTacticalPosture = AllOutAttack
	assert.InDelta(t, 60.0, team.TacticalFit(), 1e-9)

	team.Coach.Style = StylePossession
	for _, p := range team.StartingEleven {
		p.Technical = 99
		p.Mental = 99
		p.Physical = 99
	}
	team.CurrentTacticalPosture = Balanced
	assert.Equal(t, 100.0, team.TacticalFit())
}

func TestWageBillAndReplacePlayer(t *testing.T) {
	team := newTestTeam(t)

	expected := 11*70.0*70*25 + 90*90*25 + 60*60*25 + 50*50*25
	assert.InDelta(t, expected, team.WageBill(), 1e-6)

	starter := team.StartingEleven[3]
	rookie := NewRookie("Academy", starter.Position)
	require.True(t, team.ReplacePlayer(starter, rookie))
	assert.Equal(t, rookie, team.StartingEleven[3])
	assert.NotContains(t, team.Players, starter)
	assert.False(t, team.ReplacePlayer(starter, rookie))
}

func TestBuildTeamAndDefaultLineup(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	team, err := BuildTeam("Generated", NewCoach("Gen", Offensive, OffensiveTactician), 75, rng)
	require.NoError(t, err)

	assert.Len(t, team.Players, 18)
	assert.Len(t, team.StartingEleven, StartingElevenSize)
	assert.Len(t, team.Bench, 7)
	assert.Equal(t, Offensive, team.CurrentTacticalPosture)

	counts := map[Position]int{}
	for _, p := range team.StartingEleven {
		counts[p.Position]++
	}
	assert.Equal(t, map[Position]int{Goalkeeper: 1, Defender: 4, Midfielder: 4, Forward: 2}, counts)

	_, err = DefaultLineup(team.Players[:5])
	assert.ErrorIs(t, err, ErrInvalidLineup)
}

func TestRemovePlayer(t *testing.T) {
	team := newTestTeam(t)
	reserve := team.Bench[1]

	assert.False(t, team.RemovePlayer(team.StartingEleven[0]), "starters stay")
	require.True(t, team.RemovePlayer(reserve))
	assert.NotContains(t, team.Players, reserve)
	assert.NotContains(t, team.Bench, reserve)
	assert.Len(t, team.Players, 13)
	assert.False(t, team.RemovePlayer(reserve))
}
