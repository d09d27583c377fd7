package sampling

import (
	"math/rand/v2"
)

// Source is the single pseudorandom stream every draw of a run comes from.
// It is seeded once and threaded explicitly into each sampler so that two
// runs with the same seed and call sequence are bit-for-bit identical.
//
// Source is not safe for concurrent use.
type Source struct {
	seed  uint64
	pcg   *rand.PCG
	draws uint64
}

// NewSource creates a PCG-backed source for seed.
func NewSource(seed uint64) *Source {
	return &Source{seed: seed, pcg: rand.NewPCG(seed, seed)}
}

// Uint64 implements rand.Source.
func (s *Source) Uint64() uint64 {
	s.draws++
	return s.pcg.Uint64()
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 { return s.seed }

// Draws returns how many 64-bit words have been consumed so far.
func (s *Source) Draws() uint64 { return s.draws }

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return rand.New(s).Float64()
}
