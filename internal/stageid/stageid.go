// Package stageid converts shader stage bytecode into small deduplicated
// integer ids.
//
// Ids are dense and start at 1. Id 0 is reserved for "stage absent" and is
// never handed out. A Cache is not safe for concurrent use.
package stageid

import (
	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/internal/partition"
)

// Absent is the id of a stage that is not present.
const Absent uint32 = 0

// Cache maps stage bytecode to ids.
type Cache struct {
	codes *partition.Cache[uint32]
	next  uint32
}

// New creates an empty Cache.
func New(opts ...partition.Option) *Cache {
	return &Cache{
		codes: partition.New[uint32](opts...),
	}
}

// Add returns the id of code, assigning the next id if code is new.
// Identical bytecode always yields the same id and does not consume one.
func (c *Cache) Add(code []byte) uint32 {
	c.next++
	candidate := c.next

	id := c.codes.GetOrAdd(code, candidate)
	if id != candidate {
		c.next--
	}
	return id
}

// TryFind resolves the id of the bytecode src starts with.
func (c *Cache) TryFind(src datasource.DataSource) (uint32, bool) {
	return c.codes.Find(src)
}

// Len returns the number of ids handed out.
func (c *Cache) Len() int {
	return int(c.next)
}

// Stats returns the statistics of the underlying table.
func (c *Cache) Stats() partition.Stats {
	return c.codes.Stats()
}
