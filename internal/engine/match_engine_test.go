package engine

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
)

func buildTeam(t *testing.T, name string, posture models.TacticalPosture, seed int64) *models.Team {
	t.Helper()
	team, err := models.BuildTeam(name, models.NewCoach(name+" Coach", posture, models.Motivator), 75, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return team
}

func newTestEngine(t *testing.T, rng random.Source) *MatchEngine {
	t.Helper()
	home := buildTeam(t, "Home", models.Balanced, 1)
	away := buildTeam(t, "Away", models.Balanced, 2)
	e, err := NewMatchEngine(home, away, rng, nil)
	require.NoError(t, err)
	return e
}

func TestNewMatchEngine_Validation(t *testing.T) {
	home := buildTeam(t, "Home", models.Balanced, 1)
	away := buildTeam(t, "Away", models.Balanced, 2)
	_ = away
	rng := rand.New(rand.NewSource(1))

	_, err := NewMatchEngine(home, home, rng, nil)
	assert.Error(t, err)

	_, err = NewMatchEngine(home, nil, rng, nil)
	assert.Error(t, err)

	incomplete := models.NewTeam("Short", models.NewCoach("X", models.Balanced, models.Motivator))
	incomplete.AddPlayer(models.NewPlayer("Lonely", models.Forward, 70))
	_, err = NewMatchEngine(home, incomplete, rng, nil)
	assert.ErrorIs(t, err, models.ErrInvalidLineup)
}

func TestNewMatchEngine_ResetsEnergy(t *testing.T) {
	home := buildTeam(t, "Home", models.Balanced, 1)
	away := buildTeam(t, "Away", models.Balanced, 2)
	for _, p := range home.Players {
		p.Energy = 12
	}

	_, err := NewMatchEngine(home, away, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)

	for _, p := range home.Players {
		assert.Equal(t, 100.0, p.Energy)
	}
}

func TestAdvanceMinute_StopsAtFullTime(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(42)))

	for i := 0; i < MatchLength+10; i++ {
		e.AdvanceMinute()
	}

	s := e.State()
	assert.True(t, e.Finished())
	assert.Equal(t, MatchLength, s.CurrentMinute)
	require.NotEmpty(t, s.Events)
	assert.Equal(t, EventFullTime, s.Events[len(s.Events)-1].Kind)

	fullTime := 0
	for _, ev := range s.Events {
		if ev.Kind == EventFullTime {
			fullTime++
		}
		assert.GreaterOrEqual(t, ev.Minute, 1)
		assert.LessOrEqual(t, ev.Minute, MatchLength)
	}
	assert.Equal(t, 1, fullTime)
}

func TestChancesCountEveryCreatedChance(t *testing.T) {
	// a zero draw clears every roll: one chance and one goal per side per minute
	e := newTestEngine(t, random.NewFixed(0))
	_, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	s := e.State()
	assert.Equal(t, MatchLength, s.HomeChances)
	assert.Equal(t, MatchLength, s.AwayChances)
	assert.Equal(t, MatchLength, s.HomeScore)
	assert.Equal(t, MatchLength, s.AwayScore)

	scorer := NominalScorer(s.HomeTeam)
	require.NotNil(t, scorer)
	assert.Equal(t, models.Forward, scorer.Position)
	assert.Equal(t, MatchLength, s.GoalsBy(scorer))
}

func TestNoChancesWhenRollsFail(t *testing.T) {
	e := newTestEngine(t, random.NewFixed(0.99))
	_, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	s := e.State()
	assert.Equal(t, 0, s.HomeChances+s.AwayChances)
	assert.Equal(t, 0, s.HomeScore+s.AwayScore)
	require.Len(t, s.Events, 1)
	assert.Equal(t, EventFullTime, s.Events[0].Kind)
}

func TestChancesAtLeastGoals(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		e := newTestEngine(t, rand.New(rand.NewSource(seed)))
		s, err := e.Run(context.Background(), nil)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, s.HomeChances, s.HomeScore)
		assert.GreaterOrEqual(t, s.AwayChances, s.AwayScore)

		logged := map[Side]int{}
		for _, ev := range s.Events {
			if ev.Kind == EventGoal || ev.Kind == EventChance {
				logged[ev.Side]++
			}
		}
		assert.LessOrEqual(t, logged[Home], s.HomeChances)
		assert.LessOrEqual(t, logged[Away], s.AwayChances)
	}
}

func TestGoalCooldown(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(7)))
	s := e.State()
	base := GoalChance(s.HomeTeam, s.AwayTeam)
	require.Greater(t, base, 0.0)

	// no goal yet: an early minute must not count as a recent goal
	s.CurrentMinute = 2
	assert.InDelta(t, base, e.goalProbability(Home), 1e-12)

	s.LastHomeGoalMinute = 5
	s.CurrentMinute = 8
	assert.InDelta(t, base*0.7, e.goalProbability(Home), 1e-12)
	assert.InDelta(t, 0.7, e.goalProbability(Home)/base, 1e-12)

	s.CurrentMinute = 9
	assert.InDelta(t, base, e.goalProbability(Home), 1e-12)

	// the away side is unaffected by the home goal
	assert.InDelta(t, GoalChance(s.AwayTeam, s.HomeTeam), e.goalProbability(Away), 1e-12)
}

func TestGoalChance_DefensiveShape(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(3)))
	s := e.State()

	open := GoalChance(s.HomeTeam, s.AwayTeam)
	s.AwayTeam.CurrentTacticalPosture = models.Defensive
	defensive := GoalChance(s.HomeTeam, s.AwayTeam)
	s.AwayTeam.CurrentTacticalPosture = models.VeryDefensive
	parked := GoalChance(s.HomeTeam, s.AwayTeam)

	assert.Less(t, defensive, open)
	assert.Less(t, parked, defensive)
}

func TestCreationChance_RisesWithPosture(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(3)))
	s := e.State()

	prev := -1.0
	for p := models.VeryDefensive; p <= models.AllOutAttack; p++ {
		s.HomeTeam.CurrentTacticalPosture = p
		c := CreationChance(s.HomeTeam, s.AwayTeam)
		assert.Greater(t, c, prev)
		assert.LessOrEqual(t, c, 0.2*1.4)
		prev = c
	}
}

func TestCreationChance_FloorsEmptyMidfield(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(3)))
	s := e.State()
	s.HomeTeam.CurrentTacticalPosture = models.Balanced

	s.HomeTeam.MidfieldStrength, s.AwayTeam.MidfieldStrength = 0, 0
	assert.Equal(t, 0.0, CreationChance(s.HomeTeam, s.AwayTeam))

	// a non-positive total divides by one
	s.HomeTeam.MidfieldStrength, s.AwayTeam.MidfieldStrength = 0.5, -0.5
	assert.InDelta(t, 0.5*baseAttackRate*creationPostureMultiplier[postureIndex(models.Balanced)], CreationChance(s.HomeTeam, s.AwayTeam), 1e-12)
}

func TestApplySubstitution_LogsOutcome(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(9)))
	for i := 0; i < 60; i++ {
		e.AdvanceMinute()
	}
	s := e.State()
	home := s.HomeTeam
	out := home.StartingEleven[len(home.StartingEleven)-1]
	in := home.Bench[0]

	require.True(t, e.ApplySubstitution(Home, out, in))
	last := s.Events[len(s.Events)-1]
	assert.Equal(t, EventSubstitution, last.Kind)
	assert.Equal(t, 60, last.Minute)
	assert.Equal(t, out.Name, last.PlayerName)
	assert.Equal(t, in.Name, last.PlayerInName)
	assert.True(t, home.IsStarter(in))

	// out is now on the bench and cannot leave the pitch again
	assert.False(t, e.ApplySubstitution(Home, out, home.Bench[0]))
	last = s.Events[len(s.Events)-1]
	assert.Equal(t, EventSubstitutionFailed, last.Kind)
}

func TestChangeTacticalPosture_LogsEvent(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(9)))
	e.AdvanceMinute()

	e.ChangeTacticalPosture(Away, models.AllOutAttack)

	s := e.State()
	assert.Equal(t, models.AllOutAttack, s.AwayTeam.CurrentTacticalPosture)
	last := s.Events[len(s.Events)-1]
	assert.Equal(t, EventTacticalChange, last.Kind)
	assert.Equal(t, Away, last.Side)
	assert.Equal(t, models.AllOutAttack, last.Posture)
	assert.Equal(t, "Away", last.Team)
}

func TestRun_Cancelled(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := e.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.CurrentMinute)
}

func TestRun_ObserverSeesEveryMinute(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(21)))

	var minutes []int
	var seen []Event
	s, err := e.Run(context.Background(), func(minute int, events []Event) {
		minutes = append(minutes, minute)
		seen = append(seen, events...)
	})
	require.NoError(t, err)

	assert.Len(t, minutes, MatchLength)
	assert.Equal(t, 1, minutes[0])
	assert.Equal(t, MatchLength, minutes[len(minutes)-1])
	assert.Equal(t, s.Events, seen)
}

func TestRun_Deterministic(t *testing.T) {
	play := func() MatchResult {
		e := newTestEngine(t, rand.New(rand.NewSource(99)))
		s, err := e.Run(context.Background(), nil)
		require.NoError(t, err)
		return s.Result()
	}

	first, second := play(), play()
	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, first.AwayScore, second.AwayScore)
	assert.Equal(t, first.HomeChances, second.HomeChances)
	assert.Equal(t, len(first.Events), len(second.Events))
}

func TestNominalScorer(t *testing.T) {
	team := buildTeam(t, "Scorers", models.Balanced, 4)
	assert.Equal(t, models.Forward, NominalScorer(team).Position)

	// a lineup of keepers and defenders credits the first defender
	var lineup []*models.Player
	for _, p := range team.Players {
		if p.Position == models.Goalkeeper || p.Position == models.Defender {
			lineup = append(lineup, p)
		}
	}
	for _, p := range team.Players {
		if len(lineup) == models.StartingElevenSize {
			break
		}
		if p.Position == models.Midfielder {
			lineup = append(lineup, p)
		}
	}
	require.NoError(t, team.SetStartingEleven(lineup))
	assert.Equal(t, models.Defender, NominalScorer(team).Position)

	empty := models.NewTeam("Empty", nil)
	assert.Nil(t, NominalScorer(empty))
}

func TestResultDetachesPlayers(t *testing.T) {
	e := newTestEngine(t, random.NewFixed(0))
	s, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	r := s.Result()
	assert.Equal(t, "Home", r.HomeTeam)
	assert.Equal(t, "Away", r.AwayTeam)
	assert.Equal(t, MatchLength, r.Minutes)
	assert.Equal(t, MatchLength, r.Scorers[NominalScorer(s.HomeTeam).Name])
	for _, ev := range r.Events {
		assert.Nil(t, ev.Player)
		assert.Nil(t, ev.PlayerIn)
	}
}

func TestTacticalChange_SerialisesEveryPosture(t *testing.T) {
	e := newTestEngine(t, rand.New(rand.NewSource(9)))
	e.ChangeTacticalPosture(Home, models.VeryDefensive)

	s := e.State()
	data, err := json.Marshal(s.Events[len(s.Events)-1])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tactical_change", decoded["kind"])
	assert.Equal(t, "very_defensive", decoded["posture"])
}
