package components

import "image/color"

// Body holds the visual extent and per-pass degree of a simulated point.
// Weight is recomputed by the proximity controller every pass; it is not
// carried between passes except through its effect on culling.
type Body struct {
	Width  float32
	Height float32
	Color  color.RGBA
	Weight int
}

// Center returns the midpoint of a body whose top-left corner is at pos.
func (b *Body) Center(pos Position) Position {
	return Position{X: pos.X + float64(b.Width)/2, Y: pos.Y + float64(b.Height)/2}
}
