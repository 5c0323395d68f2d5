package partition

import (
	"bytes"

	"github.com/hupe1980/shadercache/internal/arena"
)

// entry is either a full entry (ref covers exactly the bucket size) or a
// partial entry (ref covers a longer owner key).
type entry[T any] struct {
	ref  arena.Ref
	item T
	full bool
}

// bucket holds every entry whose digest was computed over exactly size
// bytes. Digest collisions are chained and resolved by byte comparison.
type bucket[T any] struct {
	size    int
	store   *arena.Arena
	entries map[uint32][]entry[T]
	// fulls lists full entries in insertion order for back-filling.
	fulls    []arena.Ref
	nPartial int
}

func newBucket[T any](size int, store *arena.Arena) *bucket[T] {
	return &bucket[T]{
		size:    size,
		store:   store,
		entries: make(map[uint32][]entry[T]),
	}
}

// prefixOf returns the bytes the bucket compares for e.
func (b *bucket[T]) prefixOf(e *entry[T]) []byte {
	return b.store.Bytes(e.ref.Prefix(b.size))
}

// lookupFull returns the item stored under a byte-equal full key.
func (b *bucket[T]) lookupFull(key []byte, digest uint32) (T, bool) {
	chain := b.entries[digest]
	for i := range chain {
		e := &chain[i]
		if e.full && bytes.Equal(b.prefixOf(e), key) {
			return e.item, true
		}
	}
	var zero T
	return zero, false
}

// addFull inserts key. If a byte-equal full entry exists its item is
// returned with inserted=false. A byte-equal partial entry is upgraded in
// place and reuses its owner's bytes. Otherwise key is copied into the arena
// and the returned owner handle is non-zero: the caller must register it as
// a partial in every smaller bucket.
func (b *bucket[T]) addFull(key []byte, digest uint32, item T) (stored T, owner arena.Ref, inserted bool) {
	if len(key) != b.size {
		panic("partition: full key length does not match bucket size")
	}

	chain := b.entries[digest]
	for i := range chain {
		e := &chain[i]
		if !bytes.Equal(b.prefixOf(e), key) {
			continue
		}
		if e.full {
			return e.item, arena.Ref{}, false
		}
		e.ref = e.ref.Prefix(b.size)
		e.item = item
		e.full = true
		b.nPartial--
		b.fulls = append(b.fulls, e.ref)
		return item, arena.Ref{}, true
	}

	ref := b.store.Store(key)
	b.entries[digest] = append(chain, entry[T]{ref: ref, item: item, full: true})
	b.fulls = append(b.fulls, ref)
	return item, ref, true
}

// addPartial records that the longer key owner starts with a prefix whose
// digest is digest. It is a no-op when an entry with the same prefix bytes
// already exists.
func (b *bucket[T]) addPartial(owner arena.Ref, digest uint32) {
	if int(owner.Len) <= b.size {
		panic("partition: partial owner must be longer than bucket size")
	}

	prefix := b.store.Bytes(owner.Prefix(b.size))
	chain := b.entries[digest]
	for i := range chain {
		if bytes.Equal(b.prefixOf(&chain[i]), prefix) {
			return
		}
	}

	b.entries[digest] = append(chain, entry[T]{ref: owner})
	b.nPartial++
}

// find probes the bucket with exactly size bytes of candidate data.
func (b *bucket[T]) find(prefix []byte, digest uint32) Match[T] {
	result := NotFound
	chain := b.entries[digest]
	for i := range chain {
		e := &chain[i]
		if !bytes.Equal(b.prefixOf(e), prefix) {
			continue
		}
		if e.full {
			return Match[T]{Result: FoundFull, Item: e.item}
		}
		result = FoundPartial
	}
	return Match[T]{Result: result}
}

// fillFromLonger registers a partial entry for every full entry of longer.
func (b *bucket[T]) fillFromLonger(longer *bucket[T], sum func([]byte) uint32) {
	if longer.size <= b.size {
		panic("partition: back-fill source must be longer")
	}
	for _, owner := range longer.fulls {
		b.addPartial(owner, sum(b.store.Bytes(owner.Prefix(b.size))))
	}
}

func (b *bucket[T]) fullCount() int {
	return len(b.fulls)
}

func (b *bucket[T]) partialCount() int {
	return b.nPartial
}
