// Package mmap provides memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// A Mapping exposes a file as a byte-addressable memory without copying it
// through kernel buffers. Mapping implements datasource.Memory,
// so a captured GPU memory image can be probed by the shader cache exactly
// like live guest memory: only the bytes a lookup touches are paged in.
//
// # Usage
//
//	m, err := mmap.Open("memory.img")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	src := datasource.FromMemory(m, vertexAddress)
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. The Close() method is
// idempotent and protected by atomic operations. Reads that start after
// Close fail with ErrClosed; callers must still ensure that no read is in
// progress while Close runs.
package mmap
