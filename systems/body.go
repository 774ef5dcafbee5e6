package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/clusters/components"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/registry"
	"github.com/pthm-cable/clusters/renderer"
)

// BodyBehavior implements the hooks for body entities.
// Bodies carry no per-frame logic of their own; the controller drives them.
type BodyBehavior struct{}

// Update is a no-op.
func (BodyBehavior) Update(*registry.Registry, ecs.Entity) error { return nil }

// HandleEvent is a no-op.
func (BodyBehavior) HandleEvent(*registry.Registry, ecs.Entity, event.Event) {}

// Paint draws the body rect and a red tick below its center whose length
// is the current weight.
func (BodyBehavior) Paint(r *registry.Registry, e ecs.Entity, s renderer.Surface) {
	p := r.Position(e)
	b := r.Body(e)
	if p == nil || b == nil {
		return
	}
	s.Rect(p.X, p.Y, float64(b.Width), float64(b.Height), b.Color)

	c := b.Center(*p)
	s.Line(c.X, c.Y, c.X, c.Y+float64(b.Weight), renderer.Red)
}

// NewBody returns a fresh body component from a template with weight 1.
func NewBody(template components.Body) components.Body {
	template.Weight = 1
	return template
}

// SpawnBody registers a body built from template at p.
func SpawnBody(r *registry.Registry, p components.Position, template components.Body) (ecs.Entity, error) {
	node := components.NewNode(components.KindBody)
	return r.RegisterBody(node, p, NewBody(template))
}

// SeedBodies samples n separated positions and registers a body at each.
func SeedBodies(r *registry.Registry, s *Sampler, n int, template components.Body) ([]ecs.Entity, error) {
	positions, err := s.GenerateN(n)
	if err != nil {
		return nil, fmt.Errorf("seeding bodies: %w", err)
	}
	bodies := make([]ecs.Entity, 0, len(positions))
	for _, p := range positions {
		e, err := SpawnBody(r, p, template)
		if err != nil {
			return bodies, fmt.Errorf("seeding bodies: %w", err)
		}
		bodies = append(bodies, e)
	}
	return bodies, nil
}
