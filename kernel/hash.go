package kernel

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// InitialSeed is the starting seed for a fresh per-row hash accumulator,
// consumed by HashColumns/Array.HashInto.
const InitialSeed uint64 = 0x9E3779B97F4A7C15 // same arbitrary odd constant used throughout the corpus for seed mixing

// mixSeed folds seed and the bytes of one value together, xxh3-style. The
// public xxhash/v2 API (unlike the original's twox_hash::xxh3) doesn't
// expose a raw seeded one-shot hash for arbitrary byte spans, so the
// seed-chaining loop is hand-written here: we hash seed||bytes and take
// that as the new seed. Two equal (seed, bytes) pairs always produce the
// same output, which is the only guarantee hash-join/hash-aggregate need
// (spec.md §4.1).
func mixSeed(seed uint64, b []byte) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	d := xxhash.New()
	d.Write(buf[:])
	d.Write(b)
	return d.Sum64()
}

// HashColumns computes hash(columns) per spec.md §4.1: a per-row seed
// buffer initialized to InitialSeed, xxh3-mixed with each column's bytes
// in order. Two equal rows across the same column order produce equal
// final seeds.
func HashColumns(cols []Array) []uint64 {
	if len(cols) == 0 {
		return nil
	}
	n := cols[0].Len()
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = InitialSeed
	}
	for _, c := range cols {
		c.HashInto(seeds)
	}
	return seeds
}

func hashBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func hashInt64(v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}

func hashFloat64(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}
