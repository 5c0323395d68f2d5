package testutil

import (
	"hash"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns, as an int, a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytecode returns n random bytes.
func (r *RNG) Bytecode(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// SharedPrefix returns count blobs that each start with base and continue
// with 1..count extra random bytes, so every blob is longer than base and
// the lengths are distinct.
func (r *RNG) SharedPrefix(base []byte, count int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]byte, count)
	for i := range out {
		b := make([]byte, len(base)+i+1)
		copy(b, base)
		_, _ = r.rand.Read(b[len(base):])
		out[i] = b
	}
	return out
}

// Memory is a flat byte-addressable memory for exercising memory-backed
// data sources. Address 0 is never handed out.
type Memory struct {
	data  []byte
	reads int
}

// NewMemory creates an empty memory with address 0 reserved.
func NewMemory() *Memory {
	return &Memory{data: make([]byte, 1)}
}

// Place appends code and returns its address. pad random-looking filler
// bytes follow it so that reads past the end of code stay in bounds.
func (m *Memory) Place(code []byte) uint64 {
	addr := uint64(len(m.data))
	m.data = append(m.data, code...)
	m.data = append(m.data, 0xCD, 0xCD, 0xCD, 0xCD)
	return addr
}

// ByteAt implements datasource.Memory.
func (m *Memory) ByteAt(addr uint64) byte {
	m.reads++
	return m.data[addr]
}

// Size implements datasource.Memory.
func (m *Memory) Size() (uint64, bool) {
	return uint64(len(m.data)), true
}

// Reads returns how many bytes have been read through ByteAt.
func (m *Memory) Reads() int {
	return m.reads
}

// CollidingHasher returns a hash state whose digest is always the same, so
// every key of a given length lands in one collision chain.
func CollidingHasher() hash.Hash32 {
	return constHash{}
}

type constHash struct{}

func (constHash) Write(p []byte) (int, error) { return len(p), nil }
func (constHash) Sum(b []byte) []byte         { return append(b, 0, 0, 0x2a, 0x2a) }
func (constHash) Reset()                      {}
func (constHash) Size() int                   { return 4 }
func (constHash) BlockSize() int              { return 1 }
func (constHash) Sum32() uint32               { return 0x2a2a }
