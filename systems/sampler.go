package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/clusters/components"
)

// ErrSamplingExhausted is returned when no acceptable position was found
// within the attempt cap.
var ErrSamplingExhausted = errors.New("sampling exhausted")

// Sampler produces well-separated random positions for seeding.
// Every accepted position is kept, so later samples respect earlier ones.
type Sampler struct {
	bounds      components.Rect
	minDistance float64
	maxAttempts int
	rng         *rand.Rand
	accepted    []components.Position
}

// NewSampler creates a sampler over bounds. Samples closer than or equal
// to minDistance to an accepted sample are rejected; maxAttempts bounds
// the rejections per Generate call (values below 1 are treated as 1).
func NewSampler(bounds components.Rect, minDistance float64, maxAttempts int, rng *rand.Rand) *Sampler {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Sampler{
		bounds:      bounds,
		minDistance: minDistance,
		maxAttempts: maxAttempts,
		rng:         rng,
	}
}

// Generate returns a new integer-valued position inside the bounds that is
// more than minDistance away from every position generated so far.
func (s *Sampler) Generate() (components.Position, error) {
	x0, y0 := int(s.bounds.X), int(s.bounds.Y)
	w, h := int(s.bounds.W), int(s.bounds.H)

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate := components.Position{
			X: float64(x0 + s.rng.Intn(w+1)),
			Y: float64(y0 + s.rng.Intn(h+1)),
		}
		if s.accepts(candidate) {
			s.accepted = append(s.accepted, candidate)
			return candidate, nil
		}
	}
	return components.Position{}, fmt.Errorf("%w: no position %.1f apart from %d others after %d attempts",
		ErrSamplingExhausted, s.minDistance, len(s.accepted), s.maxAttempts)
}

// GenerateN returns n positions, stopping at the first failure.
func (s *Sampler) GenerateN(n int) ([]components.Position, error) {
	out := make([]components.Position, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.Generate()
		if err != nil {
			return out, fmt.Errorf("position %d of %d: %w", i+1, n, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Positions returns a copy of every accepted position.
func (s *Sampler) Positions() []components.Position {
	out := make([]components.Position, len(s.accepted))
	copy(out, s.accepted)
	return out
}

func (s *Sampler) accepts(p components.Position) bool {
	for _, q := range s.accepted {
		if distance(p, q) <= s.minDistance {
			return false
		}
	}
	return true
}
