package league

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stitts-dev/club-sim/internal/club"
)

// ErrSeasonFinished is returned when a round is requested after the last one
var ErrSeasonFinished = errors.New("season finished")

// Fixture is one scheduled match
type Fixture struct {
	Round int        `json:"round"`
	Home  *club.Club `json:"-"`
	Away  *club.Club `json:"-"`
}

// Involves reports whether c plays in the fixture
func (f Fixture) Involves(c *club.Club) bool {
	return f.Home == c || f.Away == c
}

// Opponent returns c's opponent, or nil when c does not play
func (f Fixture) Opponent(c *club.Club) *club.Club {
	switch c {
	case f.Home:
		return f.Away
	case f.Away:
		return f.Home
	}
	return nil
}

// League holds the clubs, their double round robin schedule and the table
type League struct {
	Name         string
	Clubs        []*club.Club
	Schedule     [][]Fixture
	CurrentRound int

	table map[*club.Club]*TableEntry
}

// NewLeague schedules a home-and-away round robin between clubs
func NewLeague(name string, clubs []*club.Club) (*League, error) {
	if len(clubs) < 2 {
		return nil, fmt.Errorf("league %s needs at least 2 clubs, got %d", name, len(clubs))
	}
	seen := make(map[string]bool, len(clubs))
	for _, c := range clubs {
		if c == nil {
			return nil, fmt.Errorf("league %s: nil club", name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("league %s: duplicate club %s", name, c.Name)
		}
		seen[c.Name] = true
	}

	l := &League{
		Name:         name,
		Clubs:        append([]*club.Club(nil), clubs...),
		CurrentRound: 1,
		table:        make(map[*club.Club]*TableEntry, len(clubs)),
	}
	for _, c := range l.Clubs {
		l.table[c] = &TableEntry{Club: c.Name}
	}
	l.Schedule = generateSchedule(l.Clubs)
	return l, nil
}

// generateSchedule uses the circle method: the last club stays fixed while the
// rest rotate, then every round is mirrored with home and away swapped.
// An odd field gets a bye slot, which is dropped from the fixtures.
func generateSchedule(clubs []*club.Club) [][]Fixture {
	slots := append([]*club.Club(nil), clubs...)
	if len(slots)%2 == 1 {
		slots = append(slots, nil)
	}
	n := len(slots)
	rounds := n - 1
	half := n / 2

	first := make([][]Fixture, 0, rounds)
	for r := 0; r < rounds; r++ {
		fixtures := make([]Fixture, 0, half)
		for i := 0; i < half; i++ {
			var home, away *club.Club
			if i == 0 {
				home, away = slots[r%(n-1)], slots[n-1]
				// the fixed club alternates venue
				if r%2 == 1 {
					home, away = away, home
				}
			} else {
				home = slots[(r+i)%(n-1)]
				away = slots[(n-1-i+r)%(n-1)]
			}
			if home == nil || away == nil {
				continue
			}
			fixtures = append(fixtures, Fixture{Round: r + 1, Home: home, Away: away})
		}
		first = append(first, fixtures)
	}

	schedule := make([][]Fixture, 0, rounds*2)
	schedule = append(schedule, first...)
	for r, fixtures := range first {
		mirrored := make([]Fixture, 0, len(fixtures))
		for _, f := range fixtures {
			mirrored = append(mirrored, Fixture{Round: rounds + r + 1, Home: f.Away, Away: f.Home})
		}
		schedule = append(schedule, mirrored)
	}
	return schedule
}

// TotalRounds is (clubs-1)*2 for an even field
func (l *League) TotalRounds() int {
	return len(l.Schedule)
}

// Finished reports whether every round has been played
func (l *League) Finished() bool {
	return l.CurrentRound > l.TotalRounds()
}

// CurrentFixtures returns the fixtures of the current round, empty once finished
func (l *League) CurrentFixtures() []Fixture {
	if l.Finished() {
		return nil
	}
	return l.Schedule[l.CurrentRound-1]
}

// FixtureFor returns c's fixture in the current round
func (l *League) FixtureFor(c *club.Club) (Fixture, bool) {
	for _, f := range l.CurrentFixtures() {
		if f.Involves(c) {
			return f, true
		}
	}
	return Fixture{}, false
}

// AdvanceRound moves to the next round
func (l *League) AdvanceRound() {
	if !l.Finished() {
		l.CurrentRound++
	}
}

// RecordResult updates both clubs' table entries
func (l *League) RecordResult(home, away *club.Club, homeGoals, awayGoals int) error {
	he, ok := l.table[home]
	if !ok {
		return fmt.Errorf("league %s: unknown home club", l.Name)
	}
	ae, ok := l.table[away]
	if !ok {
		return fmt.Errorf("league %s: unknown away club", l.Name)
	}
	if home == away {
		return fmt.Errorf("league %s: %s cannot play itself", l.Name, home.Name)
	}
	if homeGoals < 0 || awayGoals < 0 {
		return fmt.Errorf("league %s: negative score %d-%d", l.Name, homeGoals, awayGoals)
	}
	he.Update(homeGoals, awayGoals)
	ae.Update(awayGoals, homeGoals)
	return nil
}

// Standings returns a sorted copy of the table: points, wins, goal
// difference and goals for, all descending
func (l *League) Standings() []TableEntry {
	entries := make([]TableEntry, 0, len(l.Clubs))
	for _, c := range l.Clubs {
		entries = append(entries, *l.table[c])
	}
	SortStandings(entries)
	return entries
}

// Position returns c's 1-based table position, 0 if c is not in the league
func (l *League) Position(c *club.Club) int {
	if _, ok := l.table[c]; !ok {
		return 0
	}
	for i, e := range l.Standings() {
		if e.Club == c.Name {
			return i + 1
		}
	}
	return 0
}

// ClubByName looks a club up by name
func (l *League) ClubByName(name string) *club.Club {
	for _, c := range l.Clubs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SortStandings orders entries in place; ties keep their existing order
func SortStandings(entries []TableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Won != b.Won {
			return a.Won > b.Won
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
}
