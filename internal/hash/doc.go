// Package hash provides the incremental 32-bit digests used to pre-filter
// bytecode keys.
//
// # Incremental Hashing
//
// Every digest is exposed as a standard hash.Hash32. The cache relies on the
// fact that Sum32 does not modify the running state, so the digest of every
// prefix of a key falls out of a single left-to-right scan:
//
//	h := hash.New(hash.CRC32C)
//	h.Write(key[:4])
//	d4 := h.Sum32() // digest of key[:4]
//	h.Write(key[4:8])
//	d8 := h.Sum32() // digest of key[:8]
//
// Digests are a filter only. Equal digests never imply equal keys; callers
// compare bytes whenever they hold them.
//
// # Kinds
//
//	Kind     Implementation                        Notes
//	CRC32C   hash/crc32 (Castagnoli)               default, SSE4.2 / ARM CRC
//	XXHash   github.com/cespare/xxhash/v2          64-bit digest folded to 32
package hash
