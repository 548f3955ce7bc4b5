// Package signature computes 64-bit seeded signatures of bit-vector
// prefixes, with a preprocessing step that makes signatures of arbitrary
// prefixes of one source vector computable in O(1) amortized time — the
// "randomized hash" external collaborator spec.md §6 describes
// (murmur(v,seed), murmur(v,prefixLen,state), preprocessMurmur(v,seed)).
package signature

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/succinct-go/zfasttrie/bitvec"
)

// rollingPrime is an odd 64-bit constant used to mix words into the
// running polynomial hash; arithmetic is intentionally mod 2^64
// (Go's native uint64 overflow), the same "polynomial hash over machine
// words" trick classic Rabin-Karp prefix hashing uses.
const rollingPrime = 0x9E3779B97F4A7C15

// Hasher is a seeded signature function; the zero value is invalid, use
// New.
type Hasher struct {
	seed uint64
}

// New returns a Hasher using the given seed.
func New(seed uint64) Hasher {
	return Hasher{seed: seed}
}

// Seed returns the hasher's seed.
func (h Hasher) Seed() uint64 { return h.seed }

// Hash returns the signature of the whole vector v. This is spec.md's
// murmur(v, seed), defined as the degenerate one-shot case of the same
// preprocessed ladder Prefix uses — the two must agree on every prefix
// length, including the full vector, so Hash routes through Preprocess
// rather than hashing v's bytes by some second, independent scheme.
func (h Hasher) Hash(v bitvec.Vector) uint64 {
	return h.Preprocess(v).Prefix(v.Size())
}

// State holds the preprocessed incremental-hash ladder for one source
// vector, enabling O(1)-amortized signatures of any of its prefixes. This
// is spec.md's preprocessMurmur(v, seed) -> state.
type State struct {
	hasher   Hasher
	v        bitvec.Vector
	prefixes []uint64 // prefixes[i] = rolling hash over the first i full words
}

// Preprocess builds a State for v under h's seed. This is spec.md's
// preprocessMurmur.
func (h Hasher) Preprocess(v bitvec.Vector) *State {
	numWords := (v.Size() + 63) / 64
	prefixes := make([]uint64, numWords+1)
	running := h.seed
	for i := uint32(0); i < numWords; i++ {
		running = running*rollingPrime + v.WordAt(i) + uint64(i)
		prefixes[i+1] = running
	}
	return &State{hasher: h, v: v, prefixes: prefixes}
}

// Prefix returns the signature of v's first prefixLen bits in O(1)
// amortized. This is spec.md's murmur(v, prefixLen, preprocessed_state).
func (s *State) Prefix(prefixLen uint32) uint64 {
	if prefixLen > s.v.Size() {
		panic("signature: prefixLen exceeds preprocessed vector size")
	}
	fullWords := prefixLen / 64
	running := s.prefixes[fullWords]
	if rem := prefixLen % 64; rem != 0 {
		word := s.v.WordAt(fullWords) & ((uint64(1) << rem) - 1)
		running = running*rollingPrime + word
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], running)
	binary.LittleEndian.PutUint32(buf[8:12], prefixLen)
	return xxh3.HashSeed(buf[:12], s.hasher.seed)
}
