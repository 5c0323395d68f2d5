// Package partition implements a content-addressable table keyed by
// variable-length byte strings that supports lookups against sources whose
// length is not known up front.
//
// # Layout
//
// Keys are partitioned by exact length into size buckets, kept sorted by
// size. A bucket of size L holds:
//
//   - full entries: keys of exactly L bytes and their items
//   - partial entries: markers saying "a longer key starts with these L
//     bytes", holding an arena handle to that longer key
//
// Every full entry of length M has a partial (or equal full) entry in every
// bucket smaller than M. New small buckets are back-filled from all longer
// buckets when they are created.
//
// # Blind Lookup
//
// Find binary searches the size axis. At each probe it hashes exactly the
// bucket's size in bytes from the source:
//
//	FoundFull    -> done
//	FoundPartial -> some longer key shares this prefix, search larger sizes
//	NotFound     -> no key of this size or longer matches, search smaller sizes
//
// This takes O(log N) probes for N distinct sizes.
//
// # Concurrency
//
// Cache is not safe for concurrent use.
package partition
