package club

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/models"
)

// objective keywords in priority order
var objectiveTiers = []struct {
	keywords []string
	tier     int
}{
	{[]string{"title", "champion of", "win the league"}, 5},
	{[]string{"champions league", "continental", "top four", "top 4"}, 4},
	{[]string{"europa", "europe", "top half"}, 3},
	{[]string{"mid table", "mid-table", "midtable"}, 2},
	{[]string{"relegation", "survival", "avoid the drop", "stay up"}, 1},
}

const defaultExpectationTier = 3

// ExpectationTierFromObjective maps a season objective to a tier from 1
// (survival) to 5 (title)
func ExpectationTierFromObjective(objective string) int {
	text := strings.ToLower(objective)
	for _, t := range objectiveTiers {
		for _, kw := range t.keywords {
			if strings.Contains(text, kw) {
				return t.tier
			}
		}
	}
	return defaultExpectationTier
}

// TargetPosition is the worst league position that still meets the tier
func TargetPosition(tier int) int {
	switch {
	case tier >= 5:
		return 1
	case tier == 4:
		return 4
	case tier == 3:
		return 7
	case tier == 2:
		return 12
	}
	return 17
}

// EvaluateExpectation compares the club's league position with its season
// objective and nudges trust and pressure accordingly
func (c *Club) EvaluateExpectation(position int) models.ExpectationStatus {
	target := TargetPosition(c.ExpectationTier)

	var status models.ExpectationStatus
	switch {
	case position > target:
		status = models.BelowExpectation
		c.adjustTrust(-2)
		c.adjustPressure(2)
		if c.chance(0.20) {
			c.emit(Event{Kind: EventFrustration, Magnitude: float64(position)})
		}
	case position == target:
		status = models.ExpectationMet
		c.adjustTrust(1)
		c.adjustPressure(-1)
	default:
		status = models.AboveExpectation
		c.adjustTrust(2)
		c.adjustPressure(-2)
	}
	c.LastExpectation = status

	c.logger.WithFields(logrus.Fields{
		"position": position,
		"target":   target,
		"status":   status.String(),
	}).Debug("Expectation check")
	return status
}
