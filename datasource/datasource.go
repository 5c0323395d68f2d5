// Package datasource defines the read-only, lazily evaluated byte views the
// shader cache looks bytecode up through.
//
// A DataSource is either an in-memory key (Bytes) or a window onto externally
// owned addressable memory (FromMemory). The cache reads only the prefix it
// needs for each probe and never retains the source after a lookup returns.
//
//	src := datasource.FromMemory(gpuMemory, vertexAddress)
//	id, ok := stageCache.TryFind(src)
package datasource

// DataSource is a read-only view over a byte range.
type DataSource interface {
	// ByteAt returns the byte at offset. Reading beyond the readable extent
	// is a contract violation.
	ByteAt(offset int) byte

	// Len reports how many bytes can be read. known is false when the
	// extent is not known in advance.
	Len() (n int, known bool)
}

// Spanner is implemented by sources that can hand out contiguous windows
// without copying. Span may return fewer than n bytes only at the end of
// the readable extent.
type Spanner interface {
	Span(offset, n int) []byte
}

// Readable reports whether the first n bytes of src may be read.
func Readable(src DataSource, n int) bool {
	size, known := src.Len()
	return !known || n <= size
}

// Prefix returns the first n bytes of src. Sources implementing Spanner are
// read without copying; all other sources are copied into scratch, which is
// grown as needed and returned for reuse. The returned slice is only valid
// until the next call that reuses scratch.
func Prefix(src DataSource, n int, scratch []byte) (prefix, buf []byte) {
	if s, ok := src.(Spanner); ok {
		if p := s.Span(0, n); len(p) == n {
			return p, scratch
		}
	}

	if cap(scratch) < n {
		scratch = make([]byte, n)
	}
	scratch = scratch[:n]
	for i := range scratch {
		scratch[i] = src.ByteAt(i)
	}
	return scratch, scratch
}
