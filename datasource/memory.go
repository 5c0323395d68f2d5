package datasource

import (
	"errors"

	"github.com/hupe1980/shadercache/internal/conv"
)

// Memory is an externally owned, byte-addressable memory region such as
// guest GPU memory. Implementations are provided by callers.
type Memory interface {
	// ByteAt returns the byte stored at addr.
	ByteAt(addr uint64) byte

	// Size reports the number of addressable bytes. bounded is false for
	// address spaces without a known end.
	Size() (size uint64, bounded bool)
}

// MemorySpanner is implemented by memories that can expose a contiguous
// window without copying.
type MemorySpanner interface {
	SpanAt(addr uint64, n int) []byte
}

// FromMemory returns a zero-copy DataSource whose offset 0 is base. The
// length of the blob at base is unknown; Len reports the distance to the
// end of a bounded memory.
func FromMemory(mem Memory, base uint64) DataSource {
	return &memorySource{mem: mem, base: base}
}

type memorySource struct {
	mem  Memory
	base uint64
}

var _ Spanner = (*memorySource)(nil)

func (m *memorySource) ByteAt(offset int) byte {
	return m.mem.ByteAt(m.base + uint64(offset))
}

func (m *memorySource) Len() (int, bool) {
	size, bounded := m.mem.Size()
	if !bounded {
		return 0, false
	}
	if m.base >= size {
		return 0, true
	}
	rem, err := conv.Uint64ToInt(size - m.base)
	if err != nil {
		return 0, false
	}
	return rem, true
}

func (m *memorySource) Span(offset, n int) []byte {
	s, ok := m.mem.(MemorySpanner)
	if !ok {
		return nil
	}
	return s.SpanAt(m.base+uint64(offset), n)
}

// ErrOutOfRange is returned by Copy when the requested window extends past
// the end of a bounded memory.
var ErrOutOfRange = errors.New("datasource: read out of range")

// Copy returns a copy of the n bytes of mem starting at addr.
func Copy(mem Memory, addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrOutOfRange
	}
	if size, bounded := mem.Size(); bounded && (addr > size || uint64(n) > size-addr) {
		return nil, ErrOutOfRange
	}

	out := make([]byte, n)
	if s, ok := mem.(MemorySpanner); ok {
		if span := s.SpanAt(addr, n); len(span) == n {
			copy(out, span)
			return out, nil
		}
	}
	for i := range out {
		out[i] = mem.ByteAt(addr + uint64(i))
	}
	return out, nil
}
