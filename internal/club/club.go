package club

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/models"
	"github.com/stitts-dev/club-sim/internal/random"
)

// ClubSize drives stadium, ticketing and commercial defaults
type ClubSize int

const (
	SizeSmall ClubSize = iota
	SizeMedium
	SizeLarge
	SizeGiant
)

var clubSizeNames = []string{"small", "medium", "large", "giant"}

func (s ClubSize) String() string {
	if s < SizeSmall || s > SizeGiant {
		return fmt.Sprintf("size(%d)", int(s))
	}
	return clubSizeNames[s]
}

func (s ClubSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ClubSize) UnmarshalText(b []byte) error {
	key := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range clubSizeNames {
		if n == key {
			*s = ClubSize(i)
			return nil
		}
	}
	return fmt.Errorf("invalid club size %q", string(b))
}

type sizeProfile struct {
	capacity    int
	ticketPrice int64
	sponsorship int64
	balance     int64
}

var sizeProfiles = map[ClubSize]sizeProfile{
	SizeSmall:  {capacity: 15000, ticketPrice: 25, sponsorship: 500_000, balance: 2_000_000},
	SizeMedium: {capacity: 30000, ticketPrice: 35, sponsorship: 1_500_000, balance: 10_000_000},
	SizeLarge:  {capacity: 50000, ticketPrice: 50, sponsorship: 4_000_000, balance: 40_000_000},
	SizeGiant:  {capacity: 70000, ticketPrice: 70, sponsorship: 8_000_000, balance: 100_000_000},
}

// FinancialStatus labels the club's balance against its wage bill
type FinancialStatus string

const (
	FinancialStable   FinancialStatus = "Stable"
	FinancialTight    FinancialStatus = "Tight"
	FinancialCritical FinancialStatus = "Critical"
	FinancialIndebted FinancialStatus = "Indebted"
)

const (
	initialBoardTrust    = 70.0
	initialCoachPressure = 20.0
	recentWindowSize     = 5
	underPressureTrust   = 30.0
	bigMatchRivalry      = 70.0
)

// Config describes a club at creation
type Config struct {
	Name      string
	Size      ClubSize
	Division  string
	Objective string
	Squad     *models.Team
	Rng       random.Source
	Logger    *logrus.Logger
}

// Club owns a squad and carries the board, locker-room and financial state
// that evolves across a season. A Club is not safe for concurrent use.
type Club struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Size            ClubSize     `json:"size"`
	Division        string       `json:"division"`
	SeasonObjective string       `json:"season_objective"`
	ExpectationTier int          `json:"expectation_tier"`
	Squad           *models.Team `json:"squad"`

	BoardTrust      float64 `json:"board_trust"`
	TeamInstability float64 `json:"team_instability"`
	CoachPressure   float64 `json:"coach_pressure"`
	CrisisRisk      int     `json:"crisis_risk"`
	UnderUltimatum  bool    `json:"under_ultimatum"`
	UnbeatenStreak  int     `json:"unbeaten_streak"`

	// points from the last five matches, oldest first
	RecentPoints []int              `json:"recent_points"`
	Rivalries    map[string]float64 `json:"rivalries"`

	Balance            decimal.Decimal `json:"balance"`
	MonthlySponsorship decimal.Decimal `json:"monthly_sponsorship"`
	MonthlyWageBill    decimal.Decimal `json:"monthly_wage_bill"`
	TicketPrice        decimal.Decimal `json:"ticket_price"`
	StadiumCapacity    int             `json:"stadium_capacity"`
	LastMatchRevenue   decimal.Decimal `json:"last_match_revenue"`
	FinancialStatus    FinancialStatus `json:"financial_status"`

	LastExpectation models.ExpectationStatus `json:"last_expectation"`
	MatchesPlayed   int                      `json:"matches_played"`

	events []Event
	rng    random.Source
	logger *logrus.Entry
}

// NewClub creates a club with defaults taken from its size
func NewClub(cfg Config) (*Club, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("club name is required")
	}
	if cfg.Squad == nil {
		return nil, fmt.Errorf("club %s: squad is required", cfg.Name)
	}
	if cfg.Squad.Coach == nil {
		return nil, fmt.Errorf("club %s: squad has no coach", cfg.Name)
	}
	if cfg.Rng == nil {
		return nil, fmt.Errorf("club %s: random source is required", cfg.Name)
	}
	profile, ok := sizeProfiles[cfg.Size]
	if !ok {
		return nil, fmt.Errorf("club %s: unknown size %d", cfg.Name, cfg.Size)
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := &Club{
		ID:                 uuid.New(),
		Name:               cfg.Name,
		Size:               cfg.Size,
		Division:           cfg.Division,
		SeasonObjective:    cfg.Objective,
		ExpectationTier:    ExpectationTierFromObjective(cfg.Objective),
		Squad:              cfg.Squad,
		BoardTrust:         initialBoardTrust,
		CoachPressure:      initialCoachPressure,
		Rivalries:          make(map[string]float64),
		Balance:            decimal.NewFromInt(profile.balance),
		MonthlySponsorship: decimal.NewFromInt(profile.sponsorship),
		TicketPrice:        decimal.NewFromInt(profile.ticketPrice),
		StadiumCapacity:    profile.capacity,
		FinancialStatus:    FinancialStable,
		rng:                cfg.Rng,
		logger:             log.WithField("club", cfg.Name),
	}
	c.MonthlyWageBill = decimal.NewFromFloat(c.Squad.WageBill()).Round(0)
	c.Squad.SetInstability(c.TeamInstability)
	return c, nil
}

// UnderPressure reports a board that has nearly lost confidence
func (c *Club) UnderPressure() bool {
	return c.BoardTrust < underPressureTrust
}

// LockerRoomStatus labels the current instability level
func (c *Club) LockerRoomStatus() string {
	switch {
	case c.TeamInstability > 50:
		return "Critical"
	case c.TeamInstability > 20:
		return "Tense"
	}
	return "Stable"
}

// SetRivalry records a rivalry intensity in [0,100] with another club
func (c *Club) SetRivalry(opponent string, intensity float64) {
	c.Rivalries[opponent] = models.Clamp(intensity, 0, 100)
}

// Rivalry returns the intensity with opponent, 0 when none is recorded
func (c *Club) Rivalry(opponent string) float64 {
	return c.Rivalries[opponent]
}

// IsBigMatch reports whether a fixture against opponent counts as a big match
func (c *Club) IsBigMatch(opponent string) bool {
	return c.Rivalry(opponent) >= bigMatchRivalry
}

// RecentPointsSum totals the last n results in the rolling window
func (c *Club) RecentPointsSum(n int) int {
	sum := 0
	for _, p := range c.lastResults(n) {
		sum += p
	}
	return sum
}

func (c *Club) lastResults(n int) []int {
	if n > len(c.RecentPoints) {
		n = len(c.RecentPoints)
	}
	return c.RecentPoints[len(c.RecentPoints)-n:]
}

func (c *Club) recordPoints(points int) {
	c.RecentPoints = append(c.RecentPoints, points)
	if len(c.RecentPoints) > recentWindowSize {
		c.RecentPoints = append([]int(nil), c.RecentPoints[len(c.RecentPoints)-recentWindowSize:]...)
	}
}

func (c *Club) adjustTrust(delta float64) {
	c.BoardTrust = models.Clamp(c.BoardTrust+delta, 0, 100)
}

func (c *Club) adjustInstability(delta float64) {
	c.TeamInstability = models.Clamp(c.TeamInstability+delta, 0, 100)
	c.Squad.SetInstability(c.TeamInstability)
}

func (c *Club) adjustPressure(delta float64) {
	c.CoachPressure = models.Clamp(c.CoachPressure+delta, 0, 100)
}

// chance draws once and reports whether the draw falls under p
func (c *Club) chance(p float64) bool {
	return c.rng.Float64() < p
}
