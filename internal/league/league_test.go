package league

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testClubs(t *testing.T, n int) []*club.Club {
	t.Helper()
	specs := make([]ClubSpec, 0, n)
	for i := 0; i < n; i++ {
		specs = append(specs, ClubSpec{Name: fmt.Sprintf("Club %c", 'A'+i), Size: club.SizeMedium, Objective: "Mid table", BaseRating: 70 + i})
	}
	clubs, err := BuildClubs(specs, nil, "Test Division", rand.New(rand.NewSource(int64(n))), quietLogger())
	require.NoError(t, err)
	return clubs
}

func TestNewLeague_Validation(t *testing.T) {
	clubs := testClubs(t, 2)

	_, err := NewLeague("Tiny", clubs[:1])
	assert.Error(t, err)

	_, err = NewLeague("Dupes", []*club.Club{clubs[0], clubs[0]})
	assert.Error(t, err)

	lg, err := NewLeague("Pair", clubs)
	require.NoError(t, err)
	assert.Equal(t, 2, lg.TotalRounds())
	assert.Equal(t, 1, lg.CurrentRound)
}

func TestSchedule_DoubleRoundRobin(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		t.Run(fmt.Sprintf("%d clubs", n), func(t *testing.T) {
			lg, err := NewLeague("RR", testClubs(t, n))
			require.NoError(t, err)
			require.Equal(t, (n-1)*2, lg.TotalRounds())

			meetings := map[[2]string]int{}
			homeGames := map[string]int{}
			for r, fixtures := range lg.Schedule {
				assert.Len(t, fixtures, n/2)
				playing := map[*club.Club]bool{}
				for _, f := range fixtures {
					assert.Equal(t, r+1, f.Round)
					assert.NotEqual(t, f.Home, f.Away)
					assert.False(t, playing[f.Home], "%s plays twice in round %d", f.Home.Name, r+1)
					assert.False(t, playing[f.Away], "%s plays twice in round %d", f.Away.Name, r+1)
					playing[f.Home], playing[f.Away] = true, true
					meetings[[2]string{f.Home.Name, f.Away.Name}]++
					homeGames[f.Home.Name]++
				}
			}

			// every ordered pairing happens exactly once
			assert.Len(t, meetings, n*(n-1))
			for pair, count := range meetings {
				assert.Equal(t, 1, count, "%s v %s", pair[0], pair[1])
			}
			for name, count := range homeGames {
				assert.Equal(t, n-1, count, name)
			}
		})
	}
}

func TestSchedule_OddFieldGetsByes(t *testing.T) {
	lg, err := NewLeague("Odd", testClubs(t, 5))
	require.NoError(t, err)

	assert.Equal(t, 10, lg.TotalRounds())
	total := 0
	for _, fixtures := range lg.Schedule {
		assert.Len(t, fixtures, 2)
		total += len(fixtures)
	}
	assert.Equal(t, 5*4, total)
}

func TestRecordResultAndStandings(t *testing.T) {
	clubs := testClubs(t, 4)
	lg, err := NewLeague("Table", clubs)
	require.NoError(t, err)
	a, b, c, d := clubs[0], clubs[1], clubs[2], clubs[3]

	require.NoError(t, lg.RecordResult(a, b, 2, 0))
	require.NoError(t, lg.RecordResult(c, d, 1, 1))
	require.NoError(t, lg.RecordResult(b, c, 3, 0))
	require.NoError(t, lg.RecordResult(d, a, 0, 0))

	assert.Error(t, lg.RecordResult(a, a, 1, 0))
	assert.Error(t, lg.RecordResult(a, b, -1, 0))

	standings := lg.Standings()
	names := make([]string, 0, len(standings))
	for _, e := range standings {
		names = append(names, e.Club)
	}
	// A 4pts, B 3pts (+1), D 2pts, C 1pt
	assert.Equal(t, []string{a.Name, b.Name, d.Name, c.Name}, names)
	assert.Equal(t, 1, lg.Position(a))
	assert.Equal(t, 4, lg.Position(c))

	top := standings[0]
	assert.Equal(t, 2, top.Played)
	assert.Equal(t, 1, top.Won)
	assert.Equal(t, 1, top.Drawn)
	assert.Equal(t, 2, top.GoalDifference)
}

func TestSortStandings_TieBreakers(t *testing.T) {
	entries := []TableEntry{
		{Club: "Fewer wins", Points: 6, Won: 1, GoalDifference: 9, GoalsFor: 9},
		{Club: "Worse GD", Points: 6, Won: 2, GoalDifference: 1, GoalsFor: 9},
		{Club: "Fewer goals", Points: 6, Won: 2, GoalDifference: 3, GoalsFor: 4},
		{Club: "Leader", Points: 7, Won: 1, GoalDifference: 0, GoalsFor: 1},
		{Club: "Best of ties", Points: 6, Won: 2, GoalDifference: 3, GoalsFor: 5},
	}

	SortStandings(entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.Club)
	}
	assert.Equal(t, []string{"Leader", "Best of ties", "Fewer goals", "Worse GD", "Fewer wins"}, names)
}

func TestSeason_FullDoubleRoundRobin(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	season, err := NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), DefaultRivalries(), "", 0, rng, quietLogger())
	require.NoError(t, err)
	require.Equal(t, "Man City", season.UserClub.Name)
	require.Equal(t, 6, season.League.TotalRounds())

	minutes := 0
	season.SetObserver(func(f Fixture, minute int, events []engine.Event) {
		minutes++
	})

	summaries, err := season.PlayAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 6)
	assert.True(t, season.Finished())
	assert.Equal(t, 12*engine.MatchLength, minutes)

	standings := season.League.Standings()
	played, points := 0, 0
	for i, e := range standings {
		played += e.Played
		points += e.Points
		assert.Equal(t, 6, e.Played)
		if i > 0 {
			prev := standings[i-1]
			assert.True(t, prev.Points > e.Points ||
				(prev.Points == e.Points && prev.Won > e.Won) ||
				(prev.Points == e.Points && prev.Won == e.Won && prev.GoalDifference > e.GoalDifference) ||
				(prev.Points == e.Points && prev.Won == e.Won && prev.GoalDifference == e.GoalDifference && prev.GoalsFor >= e.GoalsFor),
				"%s above %s", prev.Club, e.Club)
		}
	}
	// each of the 12 fixtures updates exactly two entries
	assert.Equal(t, 12*2, played)
	assert.LessOrEqual(t, points, 12*3)
	assert.GreaterOrEqual(t, points, 12*2)

	assert.Len(t, season.Results, 12)
	evaluated := 0
	for _, r := range season.Results {
		if r.Evaluation != nil {
			evaluated++
			assert.True(t, r.Home == "Man City" || r.Away == "Man City")
		}
	}
	assert.Equal(t, 6, evaluated)
	assert.Equal(t, 6, season.UserClub.MatchesPlayed)

	monthly := 0
	for _, s := range summaries {
		if s.MonthlyProcessed {
			monthly++
			assert.Equal(t, 4, s.Round)
		}
	}
	assert.Equal(t, 1, monthly)
	assert.True(t, summaries[len(summaries)-1].Finished)

	uc := season.UserClub
	assert.GreaterOrEqual(t, uc.BoardTrust, 0.0)
	assert.LessOrEqual(t, uc.BoardTrust, 100.0)
	assert.True(t, uc.LastMatchRevenue.IsPositive(), "three home games bring gate receipts")

	_, err = season.PlayRound(context.Background())
	assert.ErrorIs(t, err, ErrSeasonFinished)
}

func TestSeason_Deterministic(t *testing.T) {
	play := func() []TableEntry {
		season, err := NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), DefaultRivalries(), "Arsenal", 4, rand.New(rand.NewSource(7)), quietLogger())
		require.NoError(t, err)
		_, err = season.PlayAll(context.Background())
		require.NoError(t, err)
		return season.League.Standings()
	}

	assert.Equal(t, play(), play())
}

func TestSeason_Cancelled(t *testing.T) {
	season, err := NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), nil, "", 4, rand.New(rand.NewSource(1)), quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = season.PlayRound(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeason_CancelledMidRoundLeavesNoTrace(t *testing.T) {
	season, err := NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), DefaultRivalries(), "Man City", 4, rand.New(rand.NewSource(11)), quietLogger())
	require.NoError(t, err)
	require.Len(t, season.League.CurrentFixtures(), 2)

	trust := season.UserClub.BoardTrust
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var first string
	season.SetObserver(func(f Fixture, minute int, _ []engine.Event) {
		key := f.Home.Name + " v " + f.Away.Name
		if first == "" {
			first = key
		}
		if key != first && minute == 10 {
			cancel()
		}
	})

	_, err = season.PlayRound(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, season.League.CurrentRound)
	assert.Empty(t, season.Results)
	assert.Equal(t, 0, season.UserClub.MatchesPlayed)
	assert.Equal(t, trust, season.UserClub.BoardTrust)
	for _, e := range season.League.Standings() {
		assert.Zero(t, e.Played, e.Club)
	}

	season.SetObserver(nil)
	summary, err := season.PlayRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Round)
	assert.Len(t, season.Results, 2)
	assert.Equal(t, 1, season.UserClub.MatchesPlayed)

	played := 0
	for _, e := range season.League.Standings() {
		played += e.Played
	}
	assert.Equal(t, 2*2, played)
}

func TestNewSeasonFromSpecs_UnknownUserClub(t *testing.T) {
	_, err := NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), nil, "Spurs", 4, rand.New(rand.NewSource(1)), quietLogger())
	assert.Error(t, err)

	_, err = NewSeasonFromSpecs(DefaultDivision, DefaultClubs(), []Rivalry{{A: "Man City", B: "Spurs", Intensity: 90}}, "", 4, rand.New(rand.NewSource(1)), quietLogger())
	assert.Error(t, err)
}

func TestDefaultRivalriesMakeBigMatches(t *testing.T) {
	clubs, err := BuildClubs(DefaultClubs(), DefaultRivalries(), DefaultDivision, rand.New(rand.NewSource(3)), quietLogger())
	require.NoError(t, err)

	city := clubs[0]
	assert.True(t, city.IsBigMatch("Liverpool"))
	assert.False(t, city.IsBigMatch("Chelsea"))
	assert.Equal(t, 5, city.ExpectationTier)
	assert.Equal(t, DefaultDivision, city.Division)
}

func TestBuildClubs_CoachStyle(t *testing.T) {
	var specs []ClubSpec
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name": "Press FC", "style": "high_press", "base_rating": 72},
		{"name": "Plain FC", "base_rating": 72}
	]`), &specs))

	clubs, err := BuildClubs(specs, nil, "Test Division", rand.New(rand.NewSource(5)), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, models.StyleHighPress, clubs[0].Squad.Coach.Style)
	assert.Equal(t, models.StyleBalanced, clubs[1].Squad.Coach.Style)

	defaults, err := BuildClubs(DefaultClubs(), nil, DefaultDivision, rand.New(rand.NewSource(5)), quietLogger())
	require.NoError(t, err)
	styles := make(map[string]models.TacticalStyle)
	for _, c := range defaults {
		styles[c.Name] = c.Squad.Coach.Style
	}
	assert.Equal(t, map[string]models.TacticalStyle{
		"Man City":  models.StylePossession,
		"Liverpool": models.StyleHighPress,
		"Arsenal":   models.StyleCounterAttack,
		"Chelsea":   models.StyleDirect,
	}, styles)

	_, err = BuildClubs([]ClubSpec{{Name: "Odd FC", Style: models.TacticalStyle(42)}}, nil, "Test Division", rand.New(rand.NewSource(5)), quietLogger())
	assert.Error(t, err)

	var bad ClubSpec
	assert.Error(t, json.Unmarshal([]byte(`{"name": "Odd FC", "style": "tiki_taka"}`), &bad))
}
