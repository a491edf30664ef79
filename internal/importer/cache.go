package importer

import (
	"sync"

	"github.com/Faultbox/knobsmith/pkg/math"
)

// Prepared is the parameter-independent result of importing a file: the
// selected component after winding repair and auto-orientation.
type Prepared struct {
	Positions   []math.Vec3
	Indices     []uint32
	Winding     WindingReport
	Extraction  ExtractionReport
	Orientation Orientation
}

// TriangleCount returns the number of triangles.
func (p *Prepared) TriangleCount() int {
	return len(p.Indices) / 3
}

// Clone returns a deep copy.
func (p *Prepared) Clone() *Prepared {
	out := *p
	out.Positions = make([]math.Vec3, len(p.Positions))
	copy(out.Positions, p.Positions)
	out.Indices = make([]uint32, len(p.Indices))
	copy(out.Indices, p.Indices)
	return &out
}

type cacheEntry struct {
	modTime int64
	prep    *Prepared
}

// Cache holds prepared imports keyed by absolute path. An entry is valid only
// for the modification time it was read at. Callers always get copies.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func (c *Cache) get(key string, modTime int64) (*Prepared, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok || e.modTime != modTime {
		return nil, false
	}
	// Entries are never mutated after put, so copying outside the lock is safe.
	return e.prep.Clone(), true
}

func (c *Cache) put(key string, modTime int64, p *Prepared) {
	stored := p.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Keep the newer file version if a concurrent load got here first.
	if e, ok := c.entries[key]; ok && e.modTime > modTime {
		return
	}
	c.entries[key] = cacheEntry{modTime: modTime, prep: stored}
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
