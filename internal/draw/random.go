package draw

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
)

// Source is the randomness a single pack draw consumes.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// SourceFactory creates a fresh, unshared Source for one draw.
type SourceFactory func() (Source, error)

// NewSource returns a ChaCha8 generator seeded from crypto/rand.
// Every call yields an independent stream, so concurrent draws never share state.
func NewSource() (Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSeed, err)
	}
	return rand.New(rand.NewChaCha8(seed)), nil //nolint:gosec // seeded from crypto/rand
}

// NewSeededSource returns a deterministic Source for tests and simulations.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^seedMixer)) //nolint:gosec // deterministic by intent
}

// SeededFactory returns a factory whose sources are deterministic but distinct per call.
// It is safe for concurrent use; concurrent callers never receive the same seed.
func SeededFactory(seed uint64) SourceFactory {
	var next atomic.Uint64
	next.Store(seed)
	return func() (Source, error) {
		return NewSeededSource(next.Add(1) - 1), nil
	}
}
