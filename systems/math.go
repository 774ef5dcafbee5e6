package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/clusters/components"
)

// vec converts a position to a gonum vector.
func vec(p components.Position) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// pos converts a gonum vector back to a position.
func pos(v r2.Vec) components.Position {
	return components.Position{X: v.X, Y: v.Y}
}

// distance returns the Euclidean distance between two points.
func distance(a, b components.Position) float64 {
	return r2.Norm(r2.Sub(vec(b), vec(a)))
}

// midpoint returns the point halfway between a and b.
func midpoint(a, b components.Position) components.Position {
	return pos(r2.Scale(0.5, r2.Add(vec(a), vec(b))))
}

// MoveTowards moves from toward target by step and returns the new point.
// A positive step never overshoots: if target is within step the result is
// target. A negative step moves away from target by |step|. Coincident
// points do not move since there is no direction.
func MoveTowards(from, target components.Position, step float64) components.Position {
	delta := r2.Sub(vec(target), vec(from))
	dist := r2.Norm(delta)
	if dist == 0 {
		return from
	}
	if step >= dist {
		return target
	}
	return pos(r2.Add(vec(from), r2.Scale(step/dist, delta)))
}

// clampInt clamps an int value between min and max.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
