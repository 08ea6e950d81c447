package mesh

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
)

// Cache keeps baked meshes keyed by stroke identity and rebuilds one only
// when that stroke's points or thickness change.
type Cache struct {
	mu      sync.Mutex
	opt     Options
	entries map[uuid.UUID]cacheEntry
	builds  int
}

type cacheEntry struct {
	sum  uint64
	mesh StrokeMesh
}

// NewCache returns an empty cache building with opt.
func NewCache(opt Options) *Cache {
	return &Cache{opt: opt, entries: make(map[uuid.UUID]cacheEntry)}
}

// Get returns the mesh for s, building it if needed.
func (c *Cache) Get(s domain.Stroke) StrokeMesh {
	sum := fingerprint(s)

	c.mu.Lock()
	e, ok := c.entries[s.ID]
	c.mu.Unlock()
	if ok && e.sum == sum {
		e.mesh.Color = s.Color
		return e.mesh
	}

	sm := BakeStroke(s, c.opt)
	c.mu.Lock()
	c.entries[s.ID] = cacheEntry{sum: sum, mesh: sm}
	c.builds++
	c.mu.Unlock()
	return sm
}

// Sync returns meshes for the strokes of f in order and evicts every entry
// whose stroke is no longer in f.
func (c *Cache) Sync(f domain.Frame) []StrokeMesh {
	keep := make(map[uuid.UUID]struct{}, len(f.Strokes))
	out := make([]StrokeMesh, 0, len(f.Strokes))
	for _, s := range f.Strokes {
		keep[s.ID] = struct{}{}
		if sm := c.Get(s); !sm.Mesh.IsEmpty() {
			out = append(out, sm)
		}
	}
	c.Retain(keep)
	return out
}

// Retain evicts every entry whose stroke id is not in keep and returns how
// many were evicted.
func (c *Cache) Retain(keep map[uuid.UUID]struct{}) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id := range c.entries {
		if _, ok := keep[id]; !ok {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of cached strokes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Builds returns how many meshes the cache has built.
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

func fingerprint(s domain.Stroke) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	put(s.Thickness)
	for _, p := range s.Points {
		put(p.X)
		put(p.Y)
		put(p.Z)
	}
	return h.Sum64()
}
