package engine

import (
	"math/rand/v2"
	"sync"
)

// Randomizer is a uniform source used for piece kind and color selection
type Randomizer interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
}

type pcgRandomizer struct {
	rng *rand.Rand
}

// NewRandomizer returns a seeded Randomizer; the same seed yields the same game
func NewRandomizer(seed uint64) Randomizer {
	return &pcgRandomizer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *pcgRandomizer) Intn(n int) int {
	return r.rng.IntN(n)
}

// Sequence replays a fixed list of values, wrapping around at the end.
// Each value is reduced modulo n.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence creates a Sequence over the given values
func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		values = []int{0}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
