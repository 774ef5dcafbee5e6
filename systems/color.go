package systems

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorDepth maps a distance onto a red-to-blue hue ramp.
// Distance 0 is red (hue 0), distance >= maxValue is blue (hue 240).
// The percentage is truncated to whole steps, so hue moves in 2.4 degree
// increments. Saturation is 100% and lightness 50%.
func ColorDepth(distance, maxValue int) color.RGBA {
	pct := 100
	if maxValue > 0 {
		pct = int(float64(distance) / float64(maxValue) * 100)
	}
	pct = clampInt(pct, 0, 100)

	hue := float64(pct) / 100 * 240
	r, g, b := colorful.Hsl(hue, 1, 0.5).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
