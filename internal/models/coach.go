package models

import "github.com/stitts-dev/club-sim/internal/random"

const (
	defaultSpecialtyStrength = 75.0
	maxSpecialtyStrength     = 110.0
)

// Coach represents the team's manager
type Coach struct {
	Name              string          `json:"name"`
	PreferredPosture  TacticalPosture `json:"preferred_posture"`
	Style             TacticalStyle   `json:"style"`
	PrimarySpecialty  CoachSpecialty  `json:"primary_specialty"`
	SpecialtyStrength float64         `json:"specialty_strength"`
}

func NewCoach(name string, posture TacticalPosture, specialty CoachSpecialty) *Coach {
	return &Coach{
		Name:              name,
		PreferredPosture:  posture,
		Style:             StyleBalanced,
		PrimarySpecialty:  specialty,
		SpecialtyStrength: defaultSpecialtyStrength,
	}
}

// UpdateSpecialty shifts specialty strength by [+2,+5) when the result was
// coherent with the specialty, or by -[3,7) otherwise. Returns the applied delta.
func (c *Coach) UpdateSpecialty(coherent bool, rng random.Source) float64 {
	var delta float64
	if coherent {
		delta = 2 + rng.Float64()*3
	} else {
		delta = -(3 + rng.Float64()*4)
	}
	before := c.SpecialtyStrength
	c.SpecialtyStrength = Clamp(c.SpecialtyStrength+delta, 0, maxSpecialtyStrength)
	return c.SpecialtyStrength - before
}
