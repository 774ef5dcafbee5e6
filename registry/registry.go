// Package registry tracks every live entity and drives the per-frame
// update, event and paint passes over them.
package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/pthm-cable/clusters/components"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/renderer"
)

var (
	// ErrInvalidEntityHandle is returned when a handle no longer refers to a live entity.
	ErrInvalidEntityHandle = errors.New("invalid entity handle")
	// ErrShutdown is returned when registering into a registry that was shut down.
	ErrShutdown = errors.New("registry shut down")
)

// Behavior holds the hooks for one entity kind.
// Hooks receive the registry so they can read and mutate other entities.
type Behavior interface {
	Update(r *Registry, e ecs.Entity) error
	HandleEvent(r *Registry, e ecs.Entity, ev event.Event)
	Paint(r *Registry, e ecs.Entity, s renderer.Surface)
}

// Registry owns the liveness of every entity.
//
// Entities are ark entities, so a handle carries a generation and a stale
// handle is detected by World.Alive. Registration order is kept in a slice
// of handles; removal during a pass leaves a zero-entity tombstone that is
// compacted once the outermost pass returns. Passes iterate the live slice
// by index, so entities registered mid-pass are visited in the same pass and
// entities removed mid-pass are not visited again.
type Registry struct {
	world *ecs.World
	log   *zap.Logger

	bodyMapper *ecs.Map3[components.Node, components.Position, components.Body]
	ctrlMapper *ecs.Map3[components.Node, components.Position, components.Proximity]
	nodeMap    *ecs.Map[components.Node]
	posMap     *ecs.Map[components.Position]
	bodyMap    *ecs.Map[components.Body]
	proxMap    *ecs.Map[components.Proximity]
	bodyFilter *ecs.Filter1[components.Body]

	behaviors [components.NumKinds]Behavior

	order  []ecs.Entity // registration order, zero entity = tombstone
	bodies []ecs.Entity // body index in registration order, same tombstone rule
	live   int
	nBody  int

	depth  int // nesting of running passes
	dirty  bool
	closed bool
}

// New creates an empty registry.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		world: ecs.NewWorld(),
		log:   log,
	}
	r.bodyMapper = ecs.NewMap3[components.Node, components.Position, components.Body](r.world)
	r.ctrlMapper = ecs.NewMap3[components.Node, components.Position, components.Proximity](r.world)
	r.nodeMap = ecs.NewMap[components.Node](r.world)
	r.posMap = ecs.NewMap[components.Position](r.world)
	r.bodyMap = ecs.NewMap[components.Body](r.world)
	r.proxMap = ecs.NewMap[components.Proximity](r.world)
	r.bodyFilter = ecs.NewFilter1[components.Body](r.world)
	return r
}

// Handle installs the behavior for a kind, replacing any previous one.
func (r *Registry) Handle(kind components.Kind, b Behavior) {
	r.behaviors[kind] = b
}

// RegisterBody adds a body entity at the end of the live set and the body index.
// A zero node ID is replaced with a fresh one.
func (r *Registry) RegisterBody(node components.Node, pos components.Position, body components.Body) (ecs.Entity, error) {
	if r.closed {
		return ecs.Entity{}, ErrShutdown
	}
	node.Kind = components.KindBody
	fillID(&node)

	e := r.bodyMapper.NewEntity(&node, &pos, &body)
	r.order = append(r.order, e)
	r.bodies = append(r.bodies, e)
	r.live++
	r.nBody++
	return e, nil
}

// RegisterController adds a proximity controller entity at the end of the live set.
func (r *Registry) RegisterController(node components.Node, pos components.Position, prox components.Proximity) (ecs.Entity, error) {
	if r.closed {
		return ecs.Entity{}, ErrShutdown
	}
	node.Kind = components.KindController
	fillID(&node)

	e := r.ctrlMapper.NewEntity(&node, &pos, &prox)
	r.order = append(r.order, e)
	r.live++
	return e, nil
}

// Unregister removes an entity from the live set, the body index and the world.
// Removing a handle that is no longer alive changes nothing and returns
// ErrInvalidEntityHandle, so destroy is idempotent.
func (r *Registry) Unregister(e ecs.Entity) error {
	if e.IsZero() || !r.world.Alive(e) {
		return fmt.Errorf("unregister %v: %w", e, ErrInvalidEntityHandle)
	}

	isBody := r.nodeMap.Get(e).Kind == components.KindBody
	if !tombstone(r.order, e) {
		// Alive in the world but not tracked; should be unreachable.
		r.log.Warn("unregister of untracked entity", zap.Uint32("entity", e.ID()))
	}
	r.live--
	if isBody {
		tombstone(r.bodies, e)
		r.nBody--
	}

	r.world.RemoveEntity(e)
	r.dirty = true
	if r.depth == 0 {
		r.compact()
	}
	return nil
}

// Shutdown removes every entity and refuses further registration.
func (r *Registry) Shutdown() {
	if r.closed {
		return
	}
	for _, e := range r.Live() {
		if err := r.Unregister(e); err != nil {
			r.log.Debug("shutdown unregister", zap.Error(err))
		}
	}
	r.closed = true
	r.log.Debug("registry shut down")
}

// DispatchUpdate runs the update hook of every processing entity in
// registration order. The first hook error aborts the pass.
func (r *Registry) DispatchUpdate() error {
	r.depth++
	defer r.endPass()

	for i := 0; i < len(r.order); i++ {
		e := r.order[i]
		if !r.visible(e) {
			continue
		}
		node := r.nodeMap.Get(e)
		if !node.CanProcess {
			continue
		}
		b := r.behaviors[node.Kind]
		if b == nil {
			continue
		}
		id, kind := node.ID, node.Kind
		if err := b.Update(r, e); err != nil {
			return fmt.Errorf("update %s %s: %w", kind, id, err)
		}
	}
	return nil
}

// DispatchEvent delivers ev to every entity whose listen mask accepts it.
func (r *Registry) DispatchEvent(ev event.Event) {
	r.depth++
	defer r.endPass()

	for i := 0; i < len(r.order); i++ {
		e := r.order[i]
		if !r.visible(e) {
			continue
		}
		node := r.nodeMap.Get(e)
		if !node.Listen.Accepts(ev.Kind) {
			continue
		}
		if b := r.behaviors[node.Kind]; b != nil {
			b.HandleEvent(r, e, ev)
		}
	}
}

// DispatchPaint runs the paint hook of every painting entity against s.
func (r *Registry) DispatchPaint(s renderer.Surface) {
	r.depth++
	defer r.endPass()

	for i := 0; i < len(r.order); i++ {
		e := r.order[i]
		if !r.visible(e) {
			continue
		}
		node := r.nodeMap.Get(e)
		if !node.CanPaint {
			continue
		}
		if b := r.behaviors[node.Kind]; b != nil {
			b.Paint(r, e, s)
		}
	}
}

// Alive reports whether e refers to a live entity.
func (r *Registry) Alive(e ecs.Entity) bool {
	return !e.IsZero() && r.world.Alive(e)
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.live
}

// BodyCount returns the number of live bodies.
func (r *Registry) BodyCount() int {
	return r.nBody
}

// Live returns the live entities in registration order.
func (r *Registry) Live() []ecs.Entity {
	return liveCopy(r.order, r.live)
}

// Bodies returns the live bodies in registration order. The slice is a
// snapshot; bodies registered afterwards are not in it.
func (r *Registry) Bodies() []ecs.Entity {
	return liveCopy(r.bodies, r.nBody)
}

// BodyAt returns the i-th slot of the live body index, which may be a
// tombstone (zero entity). Together with BodySlots it lets a caller walk
// the index while it grows.
func (r *Registry) BodyAt(i int) ecs.Entity {
	return r.bodies[i]
}

// BodySlots returns the current length of the body index, tombstones included.
func (r *Registry) BodySlots() int {
	return len(r.bodies)
}

// Node returns the node component of e, or nil if e is not alive.
// The pointer is valid until the next registration or removal.
func (r *Registry) Node(e ecs.Entity) *components.Node {
	if !r.Alive(e) {
		return nil
	}
	return r.nodeMap.Get(e)
}

// Position returns the position of e, or nil if e is not alive.
// The pointer is valid until the next registration or removal.
func (r *Registry) Position(e ecs.Entity) *components.Position {
	if !r.Alive(e) {
		return nil
	}
	return r.posMap.Get(e)
}

// Body returns the body component of e, or nil if e is not a live body.
// The pointer is valid until the next registration or removal.
func (r *Registry) Body(e ecs.Entity) *components.Body {
	if !r.Alive(e) || !r.bodyMap.Has(e) {
		return nil
	}
	return r.bodyMap.Get(e)
}

// Proximity returns the controller state of e, or nil if e is not a live controller.
func (r *Registry) Proximity(e ecs.Entity) *components.Proximity {
	if !r.Alive(e) || !r.proxMap.Has(e) {
		return nil
	}
	return r.proxMap.Get(e)
}

// Weights returns the weight of every live body, in storage order.
func (r *Registry) Weights() []float64 {
	weights := make([]float64, 0, r.nBody)
	query := r.bodyFilter.Query()
	for query.Next() {
		body := query.Get()
		weights = append(weights, float64(body.Weight))
	}
	return weights
}

// visible reports whether a slot should be dispatched.
func (r *Registry) visible(e ecs.Entity) bool {
	return !e.IsZero() && r.world.Alive(e)
}

// endPass compacts tombstones once the outermost pass finishes.
func (r *Registry) endPass() {
	r.depth--
	if r.depth == 0 && r.dirty {
		r.compact()
	}
}

// compact drops tombstones from the order and body index.
func (r *Registry) compact() {
	r.order = compactSlice(r.order)
	r.bodies = compactSlice(r.bodies)
	r.dirty = false
}

func fillID(node *components.Node) {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
}

// tombstone replaces e in s with the zero entity. Reports whether e was found.
func tombstone(s []ecs.Entity, e ecs.Entity) bool {
	for i := range s {
		if s[i] == e {
			s[i] = ecs.Entity{}
			return true
		}
	}
	return false
}

func compactSlice(s []ecs.Entity) []ecs.Entity {
	out := s[:0]
	for _, e := range s {
		if !e.IsZero() {
			out = append(out, e)
		}
	}
	// Clear the tail so no stale handles linger in the backing array
	for i := len(out); i < len(s); i++ {
		s[i] = ecs.Entity{}
	}
	return out
}

func liveCopy(s []ecs.Entity, n int) []ecs.Entity {
	out := make([]ecs.Entity, 0, n)
	for _, e := range s {
		if !e.IsZero() {
			out = append(out, e)
		}
	}
	return out
}
