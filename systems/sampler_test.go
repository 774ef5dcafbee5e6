package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/clusters/components"
	"github.com/pthm-cable/clusters/registry"
)

func TestSampler_FiftySeparatedPositions(t *testing.T) {
	bounds := components.Rect{X: 100, Y: 100, W: 1100, H: 800}
	s := NewSampler(bounds, 30, 10000, rand.New(rand.NewSource(7)))

	positions, err := s.GenerateN(50)
	require.NoError(t, err)
	require.Len(t, positions, 50)

	for i, p := range positions {
		assert.True(t, bounds.Contains(p), "position %d %v outside bounds", i, p)
		assert.Equal(t, math.Trunc(p.X), p.X, "x should be integral")
		assert.Equal(t, math.Trunc(p.Y), p.Y, "y should be integral")
		for j := i + 1; j < len(positions); j++ {
			assert.Greater(t, distance(p, positions[j]), 30.0)
		}
	}
	assert.Equal(t, positions, s.Positions())
}

func TestSampler_Exhausted(t *testing.T) {
	s := NewSampler(components.Rect{X: 0, Y: 0, W: 10, H: 10}, 30, 100, rand.New(rand.NewSource(1)))

	_, err := s.Generate()
	require.NoError(t, err, "first sample always fits")

	_, err = s.Generate()
	assert.ErrorIs(t, err, ErrSamplingExhausted)
	assert.Len(t, s.Positions(), 1)
}

func TestSampler_GenerateNReportsPartial(t *testing.T) {
	s := NewSampler(components.Rect{X: 0, Y: 0, W: 40, H: 0}, 30, 50, rand.New(rand.NewSource(3)))

	// A 40-wide segment fits at most two points more than 30 apart.
	positions, err := s.GenerateN(3)
	assert.ErrorIs(t, err, ErrSamplingExhausted)
	assert.LessOrEqual(t, len(positions), 2)
}

func TestSampler_PositionsIsCopy(t *testing.T) {
	s := NewSampler(components.Rect{W: 100, H: 100}, 1, 10, rand.New(rand.NewSource(1)))
	_, err := s.Generate()
	require.NoError(t, err)

	got := s.Positions()
	got[0].X = -1
	assert.NotEqual(t, -1.0, s.Positions()[0].X)
}

func TestSeedBodies(t *testing.T) {
	r := registry.New(nil)
	s := NewSampler(components.Rect{X: 0, Y: 0, W: 500, H: 500}, 20, 1000, rand.New(rand.NewSource(2)))

	bodies, err := SeedBodies(r, s, 10, testTemplate)
	require.NoError(t, err)
	require.Len(t, bodies, 10)
	assert.Equal(t, 10, r.BodyCount())

	for i, b := range bodies {
		assert.Equal(t, s.Positions()[i], *r.Position(b))
		assert.Equal(t, 1, r.Body(b).Weight)
		assert.Equal(t, testTemplate.Color, r.Body(b).Color)
	}
}
