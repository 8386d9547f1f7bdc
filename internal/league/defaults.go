package league

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
)

// ClubSpec describes a club to generate
type ClubSpec struct {
	Name       string                 `json:"name"`
	Size       club.ClubSize          `json:"size"`
	Objective  string                 `json:"objective"`
	Coach      string                 `json:"coach"`
	Posture    models.TacticalPosture `json:"posture"`
	Specialty  models.CoachSpecialty  `json:"specialty"`
	Style      models.TacticalStyle   `json:"style"`
	BaseRating int                    `json:"base_rating"`
}

// Rivalry links two clubs with an intensity in [0,100]
type Rivalry struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	Intensity float64 `json:"intensity"`
}

// DefaultDivision names the division the default clubs play in
const DefaultDivision = "Premier League"

// DefaultClubs is the four-club league used when no other setup is given
func DefaultClubs() []ClubSpec {
	return []ClubSpec{
		{Name: "Man City", Size: club.SizeLarge, Objective: "Title", Coach: "Man City Coach", Posture: models.Offensive, Specialty: models.OffensiveTactician, Style: models.StylePossession, BaseRating: 80},
		{Name: "Liverpool", Size: club.SizeLarge, Objective: "Champions League", Coach: "Liverpool Coach", Posture: models.Offensive, Specialty: models.Motivator, Style: models.StyleHighPress, BaseRating: 80},
		{Name: "Arsenal", Size: club.SizeLarge, Objective: "Champions League", Coach: "Arsenal Coach", Posture: models.Balanced, Specialty: models.DefensiveMastermind, Style: models.StyleCounterAttack, BaseRating: 79},
		{Name: "Chelsea", Size: club.SizeLarge, Objective: "Europa League", Coach: "Chelsea Coach", Posture: models.Balanced, Specialty: models.Motivator, Style: models.StyleDirect, BaseRating: 78},
	}
}

// DefaultRivalries between the default clubs
func DefaultRivalries() []Rivalry {
	return []Rivalry{
		{A: "Man City", B: "Liverpool", Intensity: 85},
		{A: "Arsenal", B: "Chelsea", Intensity: 75},
		{A: "Liverpool", B: "Chelsea", Intensity: 60},
	}
}

// BuildClubs generates squads for each spec and applies the rivalries
func BuildClubs(specs []ClubSpec, rivalries []Rivalry, division string, rng random.Source, logger *logrus.Logger) ([]*club.Club, error) {
	clubs := make([]*club.Club, 0, len(specs))
	byName := make(map[string]*club.Club, len(specs))
	for _, spec := range specs {
		coachName := spec.Coach
		if coachName == "" {
			coachName = spec.Name + " Coach"
		}
		rating := spec.BaseRating
		if rating <= 0 {
			rating = 70
		}
		if spec.Style < models.StyleBalanced || spec.Style > models.StyleDirect {
			return nil, fmt.Errorf("build %s: unknown tactical style %d", spec.Name, int(spec.Style))
		}
		coach := models.NewCoach(coachName, spec.Posture, spec.Specialty)
		coach.Style = spec.Style
		squad, err := models.BuildTeam(spec.Name, coach, rating, rng)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", spec.Name, err)
		}
		c, err := club.NewClub(club.Config{
			Name:      spec.Name,
			Size:      spec.Size,
			Division:  division,
			Objective: spec.Objective,
			Squad:     squad,
			Rng:       rng,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
		byName[c.Name] = c
	}

	for _, r := range rivalries {
		a, b := byName[r.A], byName[r.B]
		if a == nil || b == nil {
			return nil, fmt.Errorf("rivalry %s v %s: unknown club", r.A, r.B)
		}
		a.SetRivalry(b.Name, r.Intensity)
		b.SetRivalry(a.Name, r.Intensity)
	}
	return clubs, nil
}

// NewSeasonFromSpecs builds the clubs, league and season in one step. An
// empty userClub selects the first club.
func NewSeasonFromSpecs(name string, specs []ClubSpec, rivalries []Rivalry, userClub string, cadence int, rng random.Source, logger *logrus.Logger) (*Season, error) {
	clubs, err := BuildClubs(specs, rivalries, name, rng, logger)
	if err != nil {
		return nil, err
	}
	lg, err := NewLeague(name, clubs)
	if err != nil {
		return nil, err
	}
	user := lg.Clubs[0]
	if userClub != "" {
		if user = lg.ClubByName(userClub); user == nil {
			return nil, fmt.Errorf("user club %q is not in league %s", userClub, name)
		}
	}
	return NewSeason(SeasonConfig{
		League:         lg,
		UserClub:       user,
		MonthlyCadence: cadence,
		Rng:            rng,
		Logger:         logger,
	})
}
