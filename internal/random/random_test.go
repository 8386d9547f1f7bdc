package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSeedOrNew(t *testing.T) {
	seed, err := SeedOrNew(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seed)

	seed, err = SeedOrNew(0)
	require.NoError(t, err)
	assert.NotZero(t, seed)
}

func TestFixedReplaysScript(t *testing.T) {
	f := NewFixed(0.1, 0.5, 0.9)

	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 0.5, f.Float64())
	assert.Equal(t, 0.9, f.Float64())
	assert.Equal(t, 0.9, f.Float64(), "exhausted script repeats the last value")
	assert.Equal(t, 3, f.Draws())
}

func TestFixedIntn(t *testing.T) {
	f := NewFixed(0.0, 0.5, 0.999999)

	assert.Equal(t, 0, f.Intn(4))
	assert.Equal(t, 2, f.Intn(4))
	assert.Equal(t, 3, f.Intn(4))
	assert.Panics(t, func() { f.Intn(0) })
}

func TestFixedEmptyScript(t *testing.T) {
	f := NewFixed()
	assert.Equal(t, 0.0, f.Float64())
	assert.Equal(t, 0, f.Intn(10))
}
