package components

// Position represents an entity's position on the plane.
// Field layout matches gonum's r2.Vec so the two convert directly.
type Position struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}
