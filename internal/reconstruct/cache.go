package reconstruct

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"relief3d/internal/surface"
)

// DepthCache is a concurrency-safe, bounded cache of depth fields keyed by
// image content. Oldest entries are evicted first.
type DepthCache struct {
	mu       sync.RWMutex
	items    map[uint64]*surface.DepthField
	order    []uint64
	capacity int
}

// NewDepthCache creates a cache holding up to capacity fields.
// A capacity below one disables caching.
func NewDepthCache(capacity int) *DepthCache {
	return &DepthCache{
		items:    make(map[uint64]*surface.DepthField),
		capacity: capacity,
	}
}

// imageKey hashes dimensions and pixels. Blur sigma is mixed in so that
// differently configured estimators never share entries.
func imageKey(img *surface.Image, sigma float64) uint64 {
	var hdr [24]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(img.Width))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(img.Height))
	binary.LittleEndian.PutUint64(hdr[16:], math.Float64bits(sigma))
	d := xxhash.New()
	d.Write(hdr[:])
	d.Write(img.Pix)
	return d.Sum64()
}

// GetOrCompute returns the cached field for key or computes and stores it.
// The compute function runs without holding the lock, so two callers may
// race to fill the same key; the first stored result wins.
func (c *DepthCache) GetOrCompute(key uint64, compute func() (*surface.DepthField, error)) (*surface.DepthField, bool, error) {
	if c == nil || c.capacity < 1 {
		df, err := compute()
		return df, false, err
	}

	// Fast path: read lock
	c.mu.RLock()
	if df, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return df, true, nil
	}
	c.mu.RUnlock()

	df, err := compute()
	if err != nil {
		return nil, false, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing, true, nil
	}
	for len(c.order) >= c.capacity {
		delete(c.items, c.order[0])
		c.order = c.order[1:]
	}
	c.items[key] = df
	c.order = append(c.order, key)
	return df, false, nil
}

// Len returns the number of cached fields.
func (c *DepthCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
