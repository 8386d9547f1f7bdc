package models

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/club-sim/internal/random"
)

// squad template: 2 GK, 6 DF, 6 MF, 4 FW
var squadTemplate = []struct {
	position Position
	count    int
}{
	{Goalkeeper, 2},
	{Defender, 6},
	{Midfielder, 6},
	{Forward, 4},
}

// 1-4-4-2
var lineupShape = map[Position]int{
	Goalkeeper: 1,
	Defender:   4,
	Midfielder: 4,
	Forward:    2,
}

const (
	rookieRating = 55
	rookieAge    = 18
)

// GenerateSquad builds an 18-player roster around baseRating
func GenerateSquad(teamName string, baseRating int, rng random.Source) []*Player {
	players := make([]*Player, 0, 18)
	for _, slot := range squadTemplate {
		for i := 1; i <= slot.count; i++ {
			rating := baseRating + rng.Intn(11) - 5
			p := NewPlayer(fmt.Sprintf("%s %s%d", teamName, slot.position.Abbrev(), i), slot.position, rating)
			p.Age = 18 + rng.Intn(17)
			p.Technical = clampInt(p.OverallRating+rng.Intn(15)-7, 1, 99)
			p.Physical = clampInt(p.OverallRating+rng.Intn(15)-7, 1, 99)
			p.Mental = clampInt(p.OverallRating+rng.Intn(15)-7, 1, 99)
			p.LockerRoomInfluence = Clamp(rng.Float64()*100, 0, 100)
			p.CalculateMarketValue(StatusNormal)
			players = append(players, p)
		}
	}
	return players
}

// DefaultLineup picks a 1-4-4-2 by rating, filling gaps from the best remaining players
func DefaultLineup(players []*Player) ([]*Player, error) {
	if len(players) < StartingElevenSize {
		return nil, fmt.Errorf("%w: roster has %d players, need %d", ErrInvalidLineup, len(players), StartingElevenSize)
	}

	ranked := append([]*Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallRating > ranked[j].OverallRating
	})

	picked := make(map[*Player]bool, StartingElevenSize)
	need := map[Position]int{}
	for pos, n := range lineupShape {
		need[pos] = n
	}
	for _, p := range ranked {
		if need[p.Position] > 0 {
			need[p.Position]--
			picked[p] = true
		}
	}
	for _, p := range ranked {
		if len(picked) >= StartingElevenSize {
			break
		}
		picked[p] = true
	}

	// keep roster order so the lineup reads goalkeeper first
	lineup := make([]*Player, 0, StartingElevenSize)
	for _, p := range players {
		if picked[p] {
			lineup = append(lineup, p)
		}
	}
	return lineup, nil
}

// NewRookie creates a low-rated academy replacement
func NewRookie(name string, position Position) *Player {
	p := NewPlayer(name, position, rookieRating)
	p.Age = rookieAge
	p.Morale = 60
	p.LockerRoomInfluence = 10
	p.CalculateMarketValue(StatusNormal)
	return p
}

// BuildTeam generates a squad and applies the default lineup
func BuildTeam(name string, coach *Coach, baseRating int, rng random.Source) (*Team, error) {
	team := NewTeam(name, coach)
	for _, p := range GenerateSquad(name, baseRating, rng) {
		team.AddPlayer(p)
	}
	lineup, err := DefaultLineup(team.Players)
	if err != nil {
		return nil, err
	}
	if err := team.SetStartingEleven(lineup); err != nil {
		return nil, err
	}
	return team, nil
}
