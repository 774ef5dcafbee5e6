package systems

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/clusters/components"
)

func TestMoveTowards(t *testing.T) {
	origin := components.Position{X: 0, Y: 0}
	tests := []struct {
		name   string
		from   components.Position
		target components.Position
		step   float64
		want   components.Position
	}{
		{"partial step", origin, components.Position{X: 10, Y: 0}, 2, components.Position{X: 2, Y: 0}},
		{"diagonal", origin, components.Position{X: 3, Y: 4}, 2.5, components.Position{X: 1.5, Y: 2}},
		{"clamped at target", origin, components.Position{X: 1, Y: 0}, 5, components.Position{X: 1, Y: 0}},
		{"exact reach", origin, components.Position{X: 0, Y: 5}, 5, components.Position{X: 0, Y: 5}},
		{"negative moves away", origin, components.Position{X: 10, Y: 0}, -2, components.Position{X: -2, Y: 0}},
		{"negative not clamped", origin, components.Position{X: 1, Y: 0}, -5, components.Position{X: -5, Y: 0}},
		{"coincident", origin, origin, 3, origin},
		{"zero step", origin, components.Position{X: 4, Y: 4}, 0, origin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.from, tt.target, tt.step)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestMidpoint(t *testing.T) {
	m := midpoint(components.Position{X: 100, Y: 50}, components.Position{X: 105, Y: 70})
	assert.Equal(t, components.Position{X: 102.5, Y: 60}, m)
}

func TestColorDepth_Endpoints(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, ColorDepth(0, 200))
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, ColorDepth(200, 200))
	assert.Equal(t, ColorDepth(200, 200), ColorDepth(350, 200), "beyond max clamps to blue")
	assert.Equal(t, ColorDepth(0, 200), ColorDepth(-10, 200), "negative clamps to red")
}

func TestColorDepth_HueIncreases(t *testing.T) {
	prev := -1.0
	for d := 0; d <= 200; d += 20 {
		c := ColorDepth(d, 200)
		h, s, l := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hsl()
		assert.Greater(t, h, prev, "hue at distance %d", d)
		assert.InDelta(t, 1.0, s, 0.01)
		assert.InDelta(t, 0.5, l, 0.01)
		prev = h
	}
}
