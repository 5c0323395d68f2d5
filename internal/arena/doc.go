// Package arena provides append-only byte storage for cached keys.
//
// Keys are copied into large chunks (64 KiB default) and addressed by a Ref
// handle instead of a slice header. Partial entries in smaller size buckets
// hold the Ref of the longer key they were derived from, so no bucket ever
// needs a pointer into another bucket's memory.
//
// # Lifetime
//
// The arena never frees or moves data. A Ref stays valid for the lifetime of
// the arena, and slices returned by Bytes remain stable.
//
// # Concurrency
//
// Arena is not safe for concurrent use. It is owned by exactly one
// partitioned cache and inherits its single-caller contract.
package arena
