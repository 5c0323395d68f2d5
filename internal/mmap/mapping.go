package mmap

import (
	"os"
	"sync/atomic"

	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/internal/conv"
)

var (
	_ datasource.Memory        = (*Mapping)(nil)
	_ datasource.MemorySpanner = (*Mapping)(nil)
)

// Mapping is a read-only memory-mapped file. Addresses are file offsets.
type Mapping struct {
	data   []byte
	closed atomic.Bool
}

// Open maps the whole file at path.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() < 0 {
		return nil, ErrInvalidSize
	}
	size, err := conv.Uint64ToInt(uint64(fi.Size()))
	if err != nil {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, err := mapFile(f, size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Close unmaps the file. Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	return unmapFile(m.data)
}

// Bytes returns the mapped contents, or nil after Close.
// The slice must not be used after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the size of the mapping in bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Advise sets the paging hint for the whole mapping.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return advise(m.data, pattern)
}

// ByteAt implements datasource.Memory. It panics with ErrClosed after Close.
func (m *Mapping) ByteAt(addr uint64) byte {
	if m.closed.Load() {
		panic(ErrClosed)
	}
	return m.data[addr]
}

// Size implements datasource.Memory. A closed mapping is empty.
func (m *Mapping) Size() (uint64, bool) {
	if m.closed.Load() {
		return 0, true
	}
	return uint64(len(m.data)), true
}

// SpanAt implements datasource.MemorySpanner. It returns nil after Close.
func (m *Mapping) SpanAt(addr uint64, n int) []byte {
	return span(m.Bytes(), addr, n)
}

// span returns at most n bytes of data starting at addr, capped so that
// callers cannot append into the mapping.
func span(data []byte, addr uint64, n int) []byte {
	size := uint64(len(data))
	if addr >= size || n <= 0 {
		return nil
	}
	end := min(addr+uint64(n), size)
	return data[addr:end:end]
}
