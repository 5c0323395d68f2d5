package hash

import (
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Kind selects the digest algorithm.
type Kind uint8

const (
	// CRC32C is CRC32-Castagnoli. It is the default.
	CRC32C Kind = iota
	// XXHash is xxHash64 with the upper and lower halves xor-folded.
	XXHash
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case CRC32C:
		return "crc32c"
	case XXHash:
		return "xxhash"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind resolves a kind by name. The empty string selects CRC32C.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "crc32c", "":
		return CRC32C, nil
	case "xxhash":
		return XXHash, nil
	default:
		return 0, fmt.Errorf("hash: unknown kind %q", s)
	}
}

// Factory creates fresh incremental hash states.
type Factory func() hash.Hash32

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
// Computing this once avoids repeated MakeTable calls.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// New returns a fresh incremental state for kind.
func New(kind Kind) hash.Hash32 {
	if kind == XXHash {
		return &xxh32{d: xxhash.New()}
	}
	return crc32.New(crc32cTable)
}

// FactoryFor returns a Factory producing states of the given kind.
func FactoryFor(kind Kind) Factory {
	return func() hash.Hash32 { return New(kind) }
}

func fold(v uint64) uint32 {
	return uint32(v>>32) ^ uint32(v)
}

// xxh32 adapts xxhash.Digest to hash.Hash32.
type xxh32 struct {
	d *xxhash.Digest
}

func (x *xxh32) Write(p []byte) (int, error) { return x.d.Write(p) }

func (x *xxh32) Sum(b []byte) []byte {
	s := x.Sum32()
	return append(b, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

func (x *xxh32) Reset()         { x.d.Reset() }
func (x *xxh32) Size() int      { return 4 }
func (x *xxh32) BlockSize() int { return x.d.BlockSize() }
func (x *xxh32) Sum32() uint32  { return fold(x.d.Sum64()) }
