// Package renderer provides drawing surfaces for the paint pass.
package renderer

import "image/color"

// Surface is the drawing target shared by every entity during a paint pass.
// Coordinates are in world units; implementations map them to their device.
type Surface interface {
	Rect(x, y, w, h float64, c color.RGBA)
	Line(x1, y1, x2, y2 float64, c color.RGBA)
}

// Canvas is a Surface the frame driver can wipe before each paint pass.
type Canvas interface {
	Surface
	Clear()
}

// Palette colors used by the simulation.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)
