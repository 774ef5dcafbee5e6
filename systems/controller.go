package systems

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/pthm-cable/clusters/components"
	"github.com/pthm-cable/clusters/config"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/registry"
	"github.com/pthm-cable/clusters/renderer"
)

// PassObserver receives the summary of every proximity pass.
type PassObserver interface {
	ObservePass(stats components.PassStats)
}

// PassObserverFunc adapts a function to PassObserver.
type PassObserverFunc func(stats components.PassStats)

// ObservePass calls f(stats).
func (f PassObserverFunc) ObservePass(stats components.PassStats) { f(stats) }

// pairKey identifies an unordered pair of bodies by node ID.
type pairKey [2]uuid.UUID

func makePairKey(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Controller runs the proximity pass over every body once per update.
//
// Each pass resets weights, classifies every unordered body pair by
// distance, spawns bodies next to pairs that are too close, culls bodies
// that are isolated or overcrowded, and finally nudges each surviving
// neighbour pair together or apart.
type Controller struct {
	cfg      config.ProximityConfig
	template components.Body
	rng      *rand.Rand
	log      *zap.Logger
	observer PassObserver

	entity  ecs.Entity
	checked map[pairKey]struct{}
	spawned map[ecs.Entity]struct{}
	last    components.PassStats
}

// NewController validates cfg, installs the controller hooks on r and
// registers a controller entity. Spawned bodies are copies of template.
func NewController(r *registry.Registry, cfg config.ProximityConfig, template components.Body, rng *rand.Rand, log *zap.Logger) (*Controller, error) {
	if cfg.MinThreshold >= cfg.MaxThreshold {
		return nil, fmt.Errorf("%w: min threshold %.2f must be below max threshold %.2f",
			config.ErrInvalidConfiguration, cfg.MinThreshold, cfg.MaxThreshold)
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Controller{
		cfg:      cfg,
		template: template,
		rng:      rng,
		log:      log,
		checked:  make(map[pairKey]struct{}),
		spawned:  make(map[ecs.Entity]struct{}),
	}
	r.Handle(components.KindController, c)

	node := components.NewNode(components.KindController)
	node.Listen = event.MaskOf(event.KindToggleLinks)
	prox := components.Proximity{
		MinThreshold: cfg.MinThreshold,
		MaxThreshold: cfg.MaxThreshold,
	}
	e, err := r.RegisterController(node, components.Position{}, prox)
	if err != nil {
		return nil, fmt.Errorf("registering controller: %w", err)
	}
	c.entity = e
	return c, nil
}

// Entity returns the controller's entity handle.
func (c *Controller) Entity() ecs.Entity {
	return c.entity
}

// SetObserver sets the receiver of per-pass stats. Nil disables reporting.
func (c *Controller) SetObserver(o PassObserver) {
	c.observer = o
}

// LastPass returns the stats of the most recent pass.
func (c *Controller) LastPass() components.PassStats {
	return c.last
}

// Update runs one proximity pass.
func (c *Controller) Update(r *registry.Registry, e ecs.Entity) error {
	prox := r.Proximity(e)
	if prox == nil {
		return fmt.Errorf("controller update: %w", registry.ErrInvalidEntityHandle)
	}
	minT, maxT := prox.MinThreshold, prox.MaxThreshold

	snapshot := r.Bodies()
	stats := components.PassStats{Bodies: len(snapshot)}
	for _, b := range snapshot {
		r.Body(b).Weight = 1
	}

	clear(c.checked)
	clear(c.spawned)
	pairs, err := c.classify(r, snapshot, minT, maxT, &stats)
	if err != nil {
		return err
	}

	c.cull(r, &stats)
	c.move(r, pairs)

	// Spawns and culls invalidate component pointers; fetch again.
	if prox = r.Proximity(e); prox == nil {
		return fmt.Errorf("controller update: %w", registry.ErrInvalidEntityHandle)
	}
	prox.Pairs = pairs

	stats.Pairs = len(pairs)
	stats.Survivors = r.BodyCount()
	c.last = stats
	if c.observer != nil {
		c.observer.ObservePass(stats)
	}
	return nil
}

// classify compares every unordered pair once. Outer bodies come from the
// snapshot; inner bodies come from the snapshot too unless spawned bodies
// are compared in the same pass, in which case the live index is walked.
func (c *Controller) classify(r *registry.Registry, snapshot []ecs.Entity, minT, maxT float64, stats *components.PassStats) ([]components.NeighbourPair, error) {
	lo, hi := int(minT), int(maxT)
	var pairs []components.NeighbourPair

	inner := func() int { return len(snapshot) }
	at := func(j int) ecs.Entity { return snapshot[j] }
	if c.cfg.CompareSpawnedSamePass {
		inner = r.BodySlots
		at = r.BodyAt
	}

	for _, a := range snapshot {
		for j := 0; j < inner(); j++ {
			b := at(j)
			if !r.Alive(a) || !r.Alive(b) {
				continue
			}
			idA, idB := r.Node(a).ID, r.Node(b).ID
			if idA == idB {
				continue
			}
			key := makePairKey(idA, idB)
			if _, done := c.checked[key]; done {
				continue
			}
			c.checked[key] = struct{}{}
			stats.Comparisons++

			pa, pb := *r.Position(a), *r.Position(b)
			bodyA, bodyB := r.Body(a), r.Body(b)
			d := distance(pa, pb)

			switch {
			case int(d) >= lo && int(d) < hi:
				bodyA.Weight++
				bodyB.Weight++
				pairs = append(pairs, components.NeighbourPair{A: a, B: b, Distance: d, PosA: pa, PosB: pb})
			case d < minT && (bodyA.Weight < c.cfg.SpawnWeightCap || bodyB.Weight < c.cfg.SpawnWeightCap):
				// Fresh bodies never spawn again in the same pass, so the
				// live walk always terminates.
				if c.isFresh(a) || c.isFresh(b) {
					continue
				}
				if err := c.spawn(r, midpoint(pa, pb)); err != nil {
					return nil, err
				}
				stats.Spawned++
			}
		}
	}
	return pairs, nil
}

// spawn registers a body near center, offset by up to SpawnJitter per axis.
func (c *Controller) spawn(r *registry.Registry, center components.Position) error {
	j := c.cfg.SpawnJitter
	p := components.Position{
		X: center.X + float64(c.rng.Intn(2*j+1)-j),
		Y: center.Y + float64(c.rng.Intn(2*j+1)-j),
	}
	e, err := SpawnBody(r, p, c.template)
	if err != nil {
		return fmt.Errorf("spawning body: %w", err)
	}
	c.spawned[e] = struct{}{}
	return nil
}

func (c *Controller) isFresh(e ecs.Entity) bool {
	_, ok := c.spawned[e]
	return ok
}

// cull removes isolated and overcrowded bodies, including ones spawned in
// this pass.
func (c *Controller) cull(r *registry.Registry, stats *components.PassStats) {
	for _, b := range r.Bodies() {
		w := r.Body(b).Weight
		switch {
		case w == 1:
			stats.CulledIsolated++
		case w > c.cfg.MaxWeight:
			stats.CulledCrowded++
		default:
			continue
		}
		if err := r.Unregister(b); err != nil {
			c.log.Debug("cull", zap.Error(err))
		}
	}
}

// move pulls uncrowded pairs together and pushes crowded pairs apart.
// B moves relative to A's updated position. Pairs with a culled endpoint
// do not move. Once every pair has moved, live endpoints are copied back
// into the pairs so links are drawn at final positions.
func (c *Controller) move(r *registry.Registry, pairs []components.NeighbourPair) {
	for i := range pairs {
		p := &pairs[i]
		if !r.Alive(p.A) || !r.Alive(p.B) {
			continue
		}

		wA := float64(r.Body(p.A).Weight)
		wB := float64(r.Body(p.B).Weight)
		dir := 1.0
		if wA > float64(c.cfg.CrowdWeight) || wB > float64(c.cfg.CrowdWeight) {
			dir = -1
		}

		pa, pb := r.Position(p.A), r.Position(p.B)
		*pa = MoveTowards(*pa, *pb, dir*c.cfg.Step/wA)
		*pb = MoveTowards(*pb, *pa, dir*c.cfg.Step/wB)
	}

	for i := range pairs {
		p := &pairs[i]
		if pa := r.Position(p.A); pa != nil {
			p.PosA = *pa
		}
		if pb := r.Position(p.B); pb != nil {
			p.PosB = *pb
		}
	}
}

// HandleEvent toggles link drawing.
func (c *Controller) HandleEvent(r *registry.Registry, e ecs.Entity, ev event.Event) {
	if ev.Kind != event.KindToggleLinks {
		return
	}
	if node := r.Node(e); node != nil {
		node.CanPaint = !node.CanPaint
	}
}

// Paint draws one line per neighbour pair, colored by pair distance.
func (c *Controller) Paint(r *registry.Registry, e ecs.Entity, s renderer.Surface) {
	prox := r.Proximity(e)
	if prox == nil {
		return
	}
	maxT := int(prox.MaxThreshold)
	for _, p := range prox.Pairs {
		s.Line(p.PosA.X, p.PosA.Y, p.PosB.X, p.PosB.Y, ColorDepth(int(p.Distance), maxT))
	}
}
