package attention

import (
	"math/rand"
	"sync"
	"time"
)

// Simulator produces synthetic focus samples when no real detector is
// attached. It follows the same mildly noisy high-attention pattern a webcam
// pipeline reports for an engaged student.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a time-seeded simulator.
func NewSimulator() *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededSimulator creates a simulator with a fixed seed, for reproducible
// output.
func NewSeededSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns one focus score in [0, 1]: a 0.8 baseline with noise in
// [-0.3, 0.2], clamped to the valid range.
func (s *Simulator) Sample() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	score := 0.8 + s.rng.Float64()*0.5 - 0.3
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Sample{Score: score}
}
