// Package virtual decides which rows to materialize. It tracks measured row
// heights, derives row offsets from them, and maintains the rendered window
// as the viewport scrolls or the data grows.
package virtual

// HeightCache holds measured row heights by row key. Keys survive reordering
// within one data set; the cache is dropped when the data set is replaced.
type HeightCache struct {
	heights map[string]float64
}

// NewHeightCache returns an empty cache.
func NewHeightCache() *HeightCache {
	return &HeightCache{heights: make(map[string]float64)}
}

// Get returns the measured height for key.
func (c *HeightCache) Get(key string) (float64, bool) {
	h, ok := c.heights[key]
	return h, ok
}

// Set records a measured height.
func (c *HeightCache) Set(key string, h float64) {
	c.heights[key] = h
}

// Has reports whether key was measured.
func (c *HeightCache) Has(key string) bool {
	_, ok := c.heights[key]
	return ok
}

// Len returns the number of measured rows.
func (c *HeightCache) Len() int {
	return len(c.heights)
}

// Reset forgets every measurement.
func (c *HeightCache) Reset() {
	clear(c.heights)
}
