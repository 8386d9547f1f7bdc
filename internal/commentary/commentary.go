// Package commentary renders structured match and club events as English
// text for display.
package commentary

import (
	"fmt"
	"strings"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/models"
)

var crisisHeadlines = map[club.CrisisKind]string{
	club.CrisisBoardMeeting:      "Emergency board meeting called at %s",
	club.CrisisFanProtest:        "Supporters protest outside the stadium against %s's direction",
	club.CrisisLeakedRumours:     "Dressing-room rumours leak to the press at %s",
	club.CrisisSponsorConcern:    "Main sponsor voices concern over results at %s",
	club.CrisisTrainingGroundRow: "Training-ground row reported at %s",
}

var postureNames = map[models.TacticalPosture]string{
	models.VeryDefensive: "a very defensive shape",
	models.Defensive:     "a defensive shape",
	models.Balanced:      "a balanced shape",
	models.Offensive:     "an attacking shape",
	models.AllOutAttack:  "all-out attack",
}

// Match renders one match event
func Match(e engine.Event) string {
	prefix := fmt.Sprintf("[%d'] ", e.Minute)
	switch e.Kind {
	case engine.EventGoal:
		scorer := e.PlayerName
		if scorer == "" {
			scorer = e.Team
		}
		return prefix + fmt.Sprintf("GOAL! %s scores for %s (%.0f%% chance). %d-%d",
			scorer, e.Team, e.Probability*100, e.HomeScore, e.AwayScore)
	case engine.EventChance:
		return prefix + fmt.Sprintf("Chance for %s, but it goes begging.", e.Team)
	case engine.EventSubstitution:
		return prefix + fmt.Sprintf("Substitution for %s: %s on, %s off.", e.Team, e.PlayerInName, e.PlayerName)
	case engine.EventSubstitutionFailed:
		return prefix + fmt.Sprintf("%s tried to bring on %s for %s, but the change was not allowed.",
			e.Team, orUnknown(e.PlayerInName), orUnknown(e.PlayerName))
	case engine.EventTacticalChange:
		return prefix + fmt.Sprintf("%s switch to %s.", e.Team, posture(e.Posture))
	case engine.EventFullTime:
		return prefix + fmt.Sprintf("Full time: %d-%d.", e.HomeScore, e.AwayScore)
	}
	return prefix + e.Kind.String()
}

// MatchLog renders a full match log, one line per event
func MatchLog(events []engine.Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, Match(e))
	}
	return lines
}

// Club renders one club event
func Club(e club.Event) string {
	switch e.Kind {
	case club.EventCrisis:
		if h, ok := crisisHeadlines[e.Crisis]; ok {
			return fmt.Sprintf(h, e.Club)
		}
		return fmt.Sprintf("Crisis deepens at %s", e.Club)
	case club.EventComplaint:
		return fmt.Sprintf("%s publicly criticises the atmosphere at %s", e.Player, e.Club)
	case club.EventDressingRoomSplit:
		return fmt.Sprintf("The %s dressing room is split, with %.0f senior players unhappy", e.Club, e.Magnitude)
	case club.EventStyleQuestioned:
		return fmt.Sprintf("Pundits question the playing style at %s after three straight defeats", e.Club)
	case club.EventUltimatumIssued:
		return fmt.Sprintf("ULTIMATUM: the %s board demands a win in the next match", e.Club)
	case club.EventUltimatumResolved:
		return fmt.Sprintf("Victory eases the pressure: the %s board lifts its ultimatum", e.Club)
	case club.EventUltimatumExtended:
		return fmt.Sprintf("A draw is not enough: the %s ultimatum still stands", e.Club)
	case club.EventUltimatumFailed:
		return fmt.Sprintf("Ultimatum failed: the %s board has lost all confidence in the manager", e.Club)
	case club.EventMediaPressure:
		return fmt.Sprintf("Media pressure mounts on the %s manager", e.Club)
	case club.EventDismissalConsidered:
		return fmt.Sprintf("The %s board is considering the manager's future", e.Club)
	case club.EventFrustration:
		return fmt.Sprintf("The %s board is frustrated with a %s place finish so far", e.Club, Ordinal(int(e.Magnitude)))
	case club.EventTransferRequest:
		return fmt.Sprintf("%s has handed in a transfer request at %s", e.Player, e.Club)
	case club.EventForcedSale:
		return fmt.Sprintf("%s forced to sell %s for %s to cover debts; %s promoted from the academy",
			e.Club, e.Player, Money(e.Amount.IntPart()), e.Detail)
	case club.EventDebtInterest:
		return fmt.Sprintf("%s pays %s in interest on its debt", e.Club, Money(e.Amount.IntPart()))
	case club.EventFinancialStatus:
		return fmt.Sprintf("%s finances are now rated %s", e.Club, strings.ToLower(e.Detail))
	}
	return fmt.Sprintf("%s: %s", e.Club, e.Kind)
}

// ClubLog renders club events in order
func ClubLog(events []club.Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, Club(e))
	}
	return lines
}

// Ordinal formats 1 as 1st, 2 as 2nd and so on
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Money formats whole currency units with thousands separators
func Money(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}

func posture(p models.TacticalPosture) string {
	if name, ok := postureNames[p]; ok {
		return name
	}
	return p.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "an unknown player"
	}
	return s
}
