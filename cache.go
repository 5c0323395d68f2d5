package shadercache

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/internal/stageid"
)

// StageStats describes the id table of one stage.
type StageStats struct {
	IDs            int
	Sizes          int
	FullEntries    int
	PartialEntries int
	Lookups        uint64
	Hits           uint64
	Probes         uint64
	BytesProbed    uint64
	ArenaBytes     uint64
}

// Stats describes a Cache.
type Stats struct {
	Bundles    int
	Duplicates uint64
	Lookups    uint64
	Hits       uint64
	Stages     [NumStages]StageStats
}

// Cache maps combinations of stage bytecode to compiled programs.
//
// Cache is not safe for concurrent use.
type Cache[P any] struct {
	opts options

	stages  [NumStages]*stageid.Cache
	index   map[Key]uint32
	bundles []Bundle[P]
	keys    []Key

	// usage maps a stage id to the ordinals of the bundles that use it.
	usage [NumStages]map[uint32]*roaring.Bitmap

	duplicates uint64
	lookups    uint64
	hits       uint64
}

// New creates an empty Cache.
func New[P any](optFns ...Option) *Cache[P] {
	opts := applyOptions(optFns)

	c := &Cache[P]{
		opts:  opts,
		index: make(map[Key]uint32),
	}
	for i := range c.stages {
		c.stages[i] = stageid.New(opts.partitionOptions()...)
		c.usage[i] = make(map[uint32]*roaring.Bitmap)
	}
	return c
}

// Add inserts b and returns its key. The stage tables keep their own copy
// of the bytecode; b itself is stored as given.
//
// A bundle whose key is already present replaces the stored bundle.
func (c *Cache[P]) Add(b Bundle[P]) (Key, error) {
	start := time.Now()
	key, err := c.add(b)
	c.opts.metricsCollector.RecordAdd(time.Since(start), err)
	c.opts.logger.LogAdd(key, len(c.bundles), err)
	return key, err
}

func (c *Cache[P]) add(b Bundle[P]) (Key, error) {
	present := 0
	for i, code := range b.Code {
		if code == nil {
			continue
		}
		if len(code) == 0 {
			return Key{}, &EmptyStageError{Stage: Stage(i)}
		}
		present++
	}
	if present == 0 {
		return Key{}, ErrNoStages
	}

	var key Key
	for i, code := range b.Code {
		if code != nil {
			key[i] = c.stages[i].Add(code)
		}
	}

	if ord, ok := c.index[key]; ok {
		c.bundles[ord] = b
		c.duplicates++
		c.opts.metricsCollector.RecordDuplicate()
		c.opts.logger.LogDuplicate(key)
		return key, nil
	}

	ord := uint32(len(c.bundles))
	c.index[key] = ord
	c.bundles = append(c.bundles, b)
	c.keys = append(c.keys, key)

	for i, id := range key {
		if id == IDAbsent {
			continue
		}
		bm, ok := c.usage[i][id]
		if !ok {
			bm = roaring.New()
			c.usage[i][id] = bm
		}
		bm.Add(ord)
	}

	return key, nil
}

// TryFind returns the bundle whose stages match the bytecode found in mem at
// addrs. Stages at AddressAbsent are treated as unused and mem is not read
// for them.
func (c *Cache[P]) TryFind(mem datasource.Memory, addrs Addresses) (Bundle[P], bool) {
	start := time.Now()
	b, ok := c.tryFind(mem, addrs)
	c.lookups++
	if ok {
		c.hits++
	}
	c.opts.metricsCollector.RecordLookup(ok, time.Since(start))
	return b, ok
}

func (c *Cache[P]) tryFind(mem datasource.Memory, addrs Addresses) (Bundle[P], bool) {
	key, ok := c.Resolve(mem, addrs)
	if !ok {
		return Bundle[P]{}, false
	}
	ord, ok := c.index[key]
	if !ok {
		return Bundle[P]{}, false
	}
	return c.bundles[ord], true
}

// Resolve maps each stage at addrs to its id. It reports false as soon as a
// present stage has no id.
func (c *Cache[P]) Resolve(mem datasource.Memory, addrs Addresses) (Key, bool) {
	var key Key
	for i, addr := range addrs {
		if addr == AddressAbsent {
			continue
		}
		id, ok := c.stages[i].TryFind(datasource.FromMemory(mem, addr))
		if !ok {
			return Key{}, false
		}
		key[i] = id
	}
	return key, true
}

// Get returns the bundle stored under key.
func (c *Cache[P]) Get(key Key) (Bundle[P], bool) {
	ord, ok := c.index[key]
	if !ok {
		return Bundle[P]{}, false
	}
	return c.bundles[ord], true
}

// Referencing returns the keys of the bundles whose stage uses id, in
// insertion order.
func (c *Cache[P]) Referencing(stage Stage, id uint32) []Key {
	if int(stage) >= NumStages || id == IDAbsent {
		return nil
	}
	bm, ok := c.usage[stage][id]
	if !ok {
		return nil
	}
	return c.keysOf(bm)
}

// Matching returns the keys of the bundles that agree with pattern on every
// stage where pattern is not IDAbsent. An all-absent pattern matches nothing.
func (c *Cache[P]) Matching(pattern Key) []Key {
	var result *roaring.Bitmap
	for i, id := range pattern {
		if id == IDAbsent {
			continue
		}
		bm, ok := c.usage[i][id]
		if !ok {
			return nil
		}
		if result == nil {
			result = bm.Clone()
			continue
		}
		result.And(bm)
		if result.IsEmpty() {
			return nil
		}
	}
	if result == nil {
		return nil
	}
	return c.keysOf(result)
}

func (c *Cache[P]) keysOf(bm *roaring.Bitmap) []Key {
	out := make([]Key, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, c.keys[it.Next()])
	}
	return out
}

// Len returns the number of distinct bundles.
func (c *Cache[P]) Len() int {
	return len(c.bundles)
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[P]) Stats() Stats {
	s := Stats{
		Bundles:    len(c.bundles),
		Duplicates: c.duplicates,
		Lookups:    c.lookups,
		Hits:       c.hits,
	}
	for i, sc := range c.stages {
		ps := sc.Stats()
		s.Stages[i] = StageStats{
			IDs:            sc.Len(),
			Sizes:          ps.Sizes,
			FullEntries:    ps.FullEntries,
			PartialEntries: ps.PartialEntries,
			Lookups:        ps.Lookups,
			Hits:           ps.Hits,
			Probes:         ps.Probes,
			BytesProbed:    ps.BytesProbed,
			ArenaBytes:     ps.Arena.BytesUsed,
		}
	}
	return s
}
