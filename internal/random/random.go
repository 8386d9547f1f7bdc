// Package random provides the pseudo-random source injected into the match
// engine and club dynamics, plus seed generation helpers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the subset of *rand.Rand the simulation consumes.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// New returns a seeded *rand.Rand.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SeedOrNew returns seed when non-zero, otherwise a fresh crypto seed.
func SeedOrNew(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}

// Fixed replays a scripted sequence of draws. Once the script is exhausted it
// keeps returning the last value. Intn maps the current draw onto [0, n).
type Fixed struct {
	values []float64
	pos    int
}

// NewFixed creates a scripted source. With no values every draw is 0.
func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

func (f *Fixed) next() float64 {
	if len(f.values) == 0 {
		return 0
	}
	if f.pos >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.pos]
	f.pos++
	return v
}

// Float64 returns the next scripted value.
func (f *Fixed) Float64() float64 {
	return f.next()
}

// Intn returns the next scripted value scaled to [0, n).
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	i := int(f.next() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Draws reports how many scripted values have been consumed.
func (f *Fixed) Draws() int {
	return f.pos
}
