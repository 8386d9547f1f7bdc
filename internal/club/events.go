package club

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventKind tags a club event
type EventKind int

const (
	EventCrisis EventKind = iota
	EventComplaint
	EventDressingRoomSplit
	EventStyleQuestioned
	EventUltimatumIssued
	EventUltimatumResolved
	EventUltimatumExtended
	EventUltimatumFailed
	EventMediaPressure
	EventDismissalConsidered
	EventFrustration
	EventTransferRequest
	EventForcedSale
	EventDebtInterest
	EventFinancialStatus
)

var eventKindNames = []string{
	"crisis",
	"complaint",
	"dressing_room_split",
	"style_questioned",
	"ultimatum_issued",
	"ultimatum_resolved",
	"ultimatum_extended",
	"ultimatum_failed",
	"media_pressure",
	"dismissal_considered",
	"frustration",
	"transfer_request",
	"forced_sale",
	"debt_interest",
	"financial_status",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("club_event(%d)", int(k))
	}
	return eventKindNames[k]
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CrisisKind selects the narrative of a crisis event
type CrisisKind int

const (
	CrisisBoardMeeting CrisisKind = iota
	CrisisFanProtest
	CrisisLeakedRumours
	CrisisSponsorConcern
	CrisisTrainingGroundRow
)

// CrisisKinds is the fixed pool crisis events draw from
var CrisisKinds = []CrisisKind{
	CrisisBoardMeeting,
	CrisisFanProtest,
	CrisisLeakedRumours,
	CrisisSponsorConcern,
	CrisisTrainingGroundRow,
}

var crisisKindNames = []string{"board_meeting", "fan_protest", "leaked_rumours", "sponsor_concern", "training_ground_row"}

func (k CrisisKind) String() string {
	if k < 0 || int(k) >= len(crisisKindNames) {
		return fmt.Sprintf("crisis(%d)", int(k))
	}
	return crisisKindNames[k]
}

func (k CrisisKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is an entry in the club's drain-once outbox
type Event struct {
	Kind   EventKind  `json:"kind"`
	Club   string     `json:"club"`
	Match  int        `json:"match"`
	Player string     `json:"player,omitempty"`
	Crisis CrisisKind `json:"crisis"`

	// Magnitude is the metric value that triggered the event, e.g. pressure or league position
	Magnitude float64         `json:"magnitude,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Detail    string          `json:"detail,omitempty"`
}

func (c *Club) emit(e Event) {
	e.Club = c.Name
	e.Match = c.MatchesPlayed
	c.events = append(c.events, e)
}

// Events returns a copy of the pending events without clearing them
func (c *Club) Events() []Event {
	return append([]Event(nil), c.events...)
}

// DrainEvents returns the pending events and clears the outbox
func (c *Club) DrainEvents() []Event {
	out := c.events
	c.events = nil
	return out
}
