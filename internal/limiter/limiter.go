// Package limiter selects a slice of records by offset, limit or tail. The
// CLI uses it to trim input and the terminal host uses it to page records in
// when the grid asks for more.
package limiter

import "fmt"

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate rejects negative values and Limit combined with Tail. Offset is
// ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open range [start, end) selected from length items.
func (c Config) Bounds(length int) (start, end int) {
	length = max(length, 0)
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start = min(max(c.Offset, 0), length)
	end = length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Apply returns the selected sub-slice of items. The result shares the
// backing array.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}

// Pager hands out consecutive pages of a record source.
type Pager[T any] struct {
	items []T
	size  int
	next  int
}

// NewPager pages items in batches of size. A non-positive size returns
// everything in the first page.
func NewPager[T any](items []T, size int) *Pager[T] {
	if size <= 0 {
		size = len(items)
	}
	return &Pager[T]{items: items, size: size}
}

// Next returns the next page, or nil when the source is exhausted.
func (p *Pager[T]) Next() []T {
	if p.next >= len(p.items) {
		return nil
	}
	page := Apply(Config{Offset: p.next, Limit: p.size}, p.items)
	p.next += len(page)
	return page
}

// Done reports whether every item was handed out.
func (p *Pager[T]) Done() bool {
	return p.next >= len(p.items)
}

// Remaining returns how many items are left.
func (p *Pager[T]) Remaining() int {
	return len(p.items) - p.next
}
