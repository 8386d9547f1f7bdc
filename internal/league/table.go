package league

// TableEntry is one club's row in the standings
type TableEntry struct {
	Club           string `json:"club"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// Update records one match from this club's point of view
func (e *TableEntry) Update(goalsFor, goalsAgainst int) {
	e.Played++
	e.GoalsFor += goalsFor
	e.GoalsAgainst += goalsAgainst
	e.GoalDifference = e.GoalsFor - e.GoalsAgainst

	switch {
	case goalsFor > goalsAgainst:
		e.Won++
		e.Points += 3
	case goalsFor == goalsAgainst:
		e.Drawn++
		e.Points++
	default:
		e.Lost++
	}
}
