package arena

import (
	"fmt"
	"math"

	"github.com/hupe1980/shadercache/internal/conv"
)

const (
	// DefaultChunkSize is the default size of a chunk (64 KiB).
	DefaultChunkSize = 64 * 1024
	// MaxChunks limits the number of chunks a single arena may hold.
	MaxChunks = math.MaxUint32
)

// Ref is a stable handle to bytes stored in an Arena.
// The zero Ref is invalid.
type Ref struct {
	Chunk  uint32
	Offset uint32
	Len    uint32
}

// IsZero reports whether r is the zero (invalid) reference.
func (r Ref) IsZero() bool {
	return r.Len == 0
}

// Prefix returns a reference to the first n bytes of r.
func (r Ref) Prefix(n int) Ref {
	if n < 0 || uint64(n) > uint64(r.Len) {
		panic(fmt.Sprintf("arena: prefix %d out of range [0,%d]", n, r.Len))
	}
	r.Len = uint32(n)
	return r
}

// Stats tracks arena memory usage.
//
//   - BytesReserved: total capacity of all chunks
//   - BytesUsed: bytes handed out by Store
//   - Chunks: number of chunks, including dedicated oversize chunks
//   - Stores: number of Store calls
type Stats struct {
	BytesReserved uint64
	BytesUsed     uint64
	Chunks        uint64
	Stores        uint64
}

// Arena is an append-only byte store.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	// current is the chunk new small keys are appended to, -1 if none.
	current int
	stats   Stats
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// New creates a new Arena. A chunkSize <= 0 selects DefaultChunkSize.
func New(chunkSize int, opts ...Option) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &Arena{
		chunkSize: chunkSize,
		current:   -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ChunkSize returns the configured chunk size.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

// Store copies data into the arena and returns its handle.
// Data larger than the chunk size gets a dedicated chunk.
func (a *Arena) Store(data []byte) Ref {
	n := len(data)
	if n == 0 {
		panic("arena: cannot store empty data")
	}
	size := conv.MustUint32(n)

	a.stats.Stores++
	a.stats.BytesUsed += uint64(n)

	if n > a.chunkSize {
		idx := a.appendChunk(n)
		buf := a.chunks[idx][:n]
		copy(buf, data)
		a.chunks[idx] = buf
		return Ref{Chunk: uint32(idx), Offset: 0, Len: size}
	}

	if a.current < 0 || len(a.chunks[a.current])+n > cap(a.chunks[a.current]) {
		a.current = a.appendChunk(a.chunkSize)
	}

	c := a.chunks[a.current]
	off := len(c)
	c = append(c, data...)
	a.chunks[a.current] = c

	return Ref{Chunk: uint32(a.current), Offset: uint32(off), Len: size}
}

// Bytes returns the stored bytes for ref. The slice must be treated as
// read-only.
func (a *Arena) Bytes(ref Ref) []byte {
	if ref.IsZero() {
		return nil
	}
	c := a.chunks[ref.Chunk]
	end := ref.Offset + ref.Len
	return c[ref.Offset:end:end]
}

// Stats returns a snapshot of the arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

func (a *Arena) appendChunk(size int) int {
	if uint64(len(a.chunks)) >= MaxChunks {
		panic("arena: max chunks exceeded")
	}
	a.chunks = append(a.chunks, make([]byte, 0, size))
	a.stats.Chunks++
	a.stats.BytesReserved += uint64(size)
	return len(a.chunks) - 1
}
