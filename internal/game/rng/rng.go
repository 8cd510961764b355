// Package rng isolates every random decision made by the game so matches can
// be replayed from a seed.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source is the subset of *rand.Rand the game depends on.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Factory builds a Source for one unit of work on a match.
type Factory func() Source

// New returns a deterministic Source seeded with seed.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewSeed draws a seed from the operating system's entropy pool.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return rand.Int63()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}

// Seeded returns a Factory that always produces sources seeded with seed.
func Seeded(seed int64) Factory {
	return func() Source { return New(seed) }
}

// Entropy returns a Factory that seeds each source from NewSeed.
func Entropy() Factory {
	return func() Source { return New(NewSeed()) }
}

// Pick returns a uniformly chosen element of items, or false when empty.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.Intn(len(items))], true
}
