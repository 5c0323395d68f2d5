package partition

import (
	"cmp"
	"hash"
	"slices"

	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/internal/arena"
	ihash "github.com/hupe1980/shadercache/internal/hash"
)

type config struct {
	newHash   ihash.Factory
	chunkSize int
}

// Option configures a Cache.
type Option func(*config)

// WithHasher sets the factory for incremental digest states.
// If nil is passed, CRC32C is used.
func WithHasher(f ihash.Factory) Option {
	return func(c *config) {
		c.newHash = f
	}
}

// WithHashKind selects one of the built-in digest algorithms.
func WithHashKind(kind ihash.Kind) Option {
	return func(c *config) {
		c.newHash = ihash.FactoryFor(kind)
	}
}

// WithArenaChunkSize sets the chunk size of the key arena.
func WithArenaChunkSize(size int) Option {
	return func(c *config) {
		c.chunkSize = size
	}
}

// Stats describes the shape of a Cache and its lookup activity.
type Stats struct {
	Sizes          int
	FullEntries    int
	PartialEntries int
	Lookups        uint64
	Hits           uint64
	Probes         uint64
	BytesProbed    uint64
	Arena          arena.Stats
}

// Cache maps byte keys of any length to items.
type Cache[T any] struct {
	buckets []*bucket[T]
	store   *arena.Arena

	// running is reused for every digest; the cache is single-caller.
	running hash.Hash32
	digests []uint32
	scratch []byte

	lookups     uint64
	hits        uint64
	probes      uint64
	bytesProbed uint64
}

// New creates an empty Cache.
func New[T any](opts ...Option) *Cache[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.newHash == nil {
		cfg.newHash = ihash.FactoryFor(ihash.CRC32C)
	}

	return &Cache[T]{
		store:   arena.New(cfg.chunkSize),
		running: cfg.newHash(),
	}
}

// Add inserts key unless a byte-equal key is already present.
func (c *Cache[T]) Add(key []byte, item T) {
	c.GetOrAdd(key, item)
}

// GetOrAdd returns the item already stored under key, or stores item and
// returns it. The key is copied; the caller keeps ownership of key.
func (c *Cache[T]) GetOrAdd(key []byte, item T) T {
	if len(key) == 0 {
		panic("partition: empty key")
	}

	pos, found := c.search(len(key))

	// Digests of every smaller bucket's prefix and of the whole key come
	// out of a single left-to-right pass.
	c.digests = c.digests[:0]
	c.running.Reset()
	prev := 0
	for _, b := range c.buckets[:pos] {
		_, _ = c.running.Write(key[prev:b.size])
		prev = b.size
		c.digests = append(c.digests, c.running.Sum32())
	}
	_, _ = c.running.Write(key[prev:])
	digest := c.running.Sum32()

	if !found {
		nb := newBucket[T](len(key), c.store)
		for _, longer := range c.buckets[pos:] {
			nb.fillFromLonger(longer, c.sum)
		}
		c.buckets = slices.Insert(c.buckets, pos, nb)
	}

	stored, owner, _ := c.buckets[pos].addFull(key, digest, item)
	if !owner.IsZero() {
		for i, b := range c.buckets[:pos] {
			b.addPartial(owner, c.digests[i])
		}
	}
	return stored
}

// Get returns the item stored under exactly key.
func (c *Cache[T]) Get(key []byte) (T, bool) {
	pos, found := c.search(len(key))
	if !found {
		var zero T
		return zero, false
	}
	return c.buckets[pos].lookupFull(key, c.sum(key))
}

// Find looks up the entry whose key is a prefix of src. The length of the
// entry is discovered by binary search over the cataloged sizes; each probe
// reads exactly the probed size from src.
func (c *Cache[T]) Find(src datasource.DataSource) (T, bool) {
	c.lookups++

	left, right := 0, len(c.buckets)
	for left < right {
		idx := left + (right-left)/2

		m := c.probe(c.buckets[idx], src)
		switch m.Result {
		case FoundFull:
			c.hits++
			return m.Item, true
		case NotFound:
			right = idx
		case FoundPartial:
			left = idx + 1
		}
	}

	var zero T
	return zero, false
}

// Sizes returns the cataloged key lengths in increasing order.
func (c *Cache[T]) Sizes() []int {
	sizes := make([]int, len(c.buckets))
	for i, b := range c.buckets {
		sizes[i] = b.size
	}
	return sizes
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[T]) Stats() Stats {
	s := Stats{
		Sizes:       len(c.buckets),
		Lookups:     c.lookups,
		Hits:        c.hits,
		Probes:      c.probes,
		BytesProbed: c.bytesProbed,
		Arena:       c.store.Stats(),
	}
	for _, b := range c.buckets {
		s.FullEntries += b.fullCount()
		s.PartialEntries += b.partialCount()
	}
	return s
}

func (c *Cache[T]) probe(b *bucket[T], src datasource.DataSource) Match[T] {
	c.probes++
	if !datasource.Readable(src, b.size) {
		return Match[T]{Result: NotFound}
	}

	var prefix []byte
	prefix, c.scratch = datasource.Prefix(src, b.size, c.scratch)
	c.bytesProbed += uint64(b.size)

	return b.find(prefix, c.sum(prefix))
}

func (c *Cache[T]) search(size int) (int, bool) {
	return slices.BinarySearchFunc(c.buckets, size, func(b *bucket[T], size int) int {
		return cmp.Compare(b.size, size)
	})
}

func (c *Cache[T]) sum(data []byte) uint32 {
	c.running.Reset()
	_, _ = c.running.Write(data)
	return c.running.Sum32()
}
