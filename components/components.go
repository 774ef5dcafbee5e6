// Package components defines ECS components for the simulation.
package components

import (
	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/clusters/event"
)

// Kind identifies which behavior table entry drives an entity.
// The set is closed; every kind has exactly one behavior.
type Kind uint8

const (
	KindBody Kind = iota
	KindController
	NumKinds
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindController:
		return "controller"
	default:
		return "unknown"
	}
}

// Node is carried by every registered entity.
type Node struct {
	ID         uuid.UUID
	Kind       Kind
	CanProcess bool // participates in the update pass
	CanPaint   bool // participates in the paint pass
	Listen     event.Mask
}

// NewNode returns a node with a fresh ID that processes and paints
// but listens for no events.
func NewNode(kind Kind) Node {
	return Node{
		ID:         uuid.New(),
		Kind:       kind,
		CanProcess: true,
		CanPaint:   true,
	}
}

// NeighbourPair records two bodies found in the neighbour band during a pass.
// PosA and PosB hold the last known positions so the pair can still be drawn
// after an endpoint has been culled.
type NeighbourPair struct {
	A, B       ecs.Entity
	Distance   float64
	PosA, PosB Position
}

// Proximity is the state of a proximity controller.
// Thresholds are fixed at construction; Pairs is replaced every pass.
type Proximity struct {
	MinThreshold float64
	MaxThreshold float64
	Pairs        []NeighbourPair
}

// PassStats summarises one proximity pass.
type PassStats struct {
	Bodies         int // live bodies when the pass started
	Pairs          int // neighbour-band pairs recorded
	Comparisons    int // distinct unordered pairs evaluated
	Spawned        int
	CulledIsolated int // weight stayed at 1
	CulledCrowded  int // weight exceeded the cap
	Survivors      int // live bodies after culling
}

// Culled returns the total number of bodies removed by the pass.
func (s PassStats) Culled() int {
	return s.CulledIsolated + s.CulledCrowded
}
