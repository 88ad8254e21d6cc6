package progress

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Source yields the progress increment applied by one tick.
type Source interface {
	Next() float64
}

// Factory builds an independent Source for each new task.
type Factory func() Source

// Uniform draws increments uniformly from [min, max).
type Uniform struct {
	mu       sync.Mutex
	rng      *rand.Rand
	min, max float64
}

func NewUniform(seed uint64, min, max float64) *Uniform {
	if max < min {
		min, max = max, min
	}

	if min < 0 {
		min = 0
	}

	return &Uniform{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		min: min,
		max: max,
	}
}

func (u *Uniform) Next() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.min + u.rng.Float64()*(u.max-u.min)
}

// NewFactory returns a Factory of Uniform sources. A zero base seed picks a
// random seed per source; otherwise seeds are base, base+1, ... so runs are
// reproducible while tasks still progress independently.
func NewFactory(baseSeed uint64, min, max float64) Factory {
	var n atomic.Uint64

	return func() Source {
		seed := rand.Uint64()
		if baseSeed != 0 {
			seed = baseSeed + n.Add(1) - 1
		}

		return NewUniform(seed, min, max)
	}
}

// Sequence replays fixed increments, repeating the last one once exhausted.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}

	v := s.values[s.pos]
	if s.pos < len(s.values)-1 {
		s.pos++
	}

	return v
}
