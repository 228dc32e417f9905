package trimmed

import (
	"math/rand"
)

// TieBreaker supplies every random choice a solver makes. Implementations
// must be deterministic for a given seed.
type TieBreaker interface {
	// Perm returns a permutation of [0, n).
	Perm(n int) []int
	// Sign returns +1 or −1.
	Sign() float64
	// NormFloat64 returns a standard normal draw.
	NormFloat64() float64
}

// RandTieBreaker is a TieBreaker backed by its own *rand.Rand.
// It is not safe for concurrent use; give each solve its own instance.
type RandTieBreaker struct {
	rng *rand.Rand
}

// NewRandTieBreaker seeds a new RandTieBreaker.
func NewRandTieBreaker(seed int64) *RandTieBreaker {
	return &RandTieBreaker{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandTieBreaker) Perm(n int) []int { return r.rng.Perm(n) }

func (r *RandTieBreaker) Sign() float64 {
	if r.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

func (r *RandTieBreaker) NormFloat64() float64 { return r.rng.NormFloat64() }
