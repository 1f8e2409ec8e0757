package grid

// Cache holds a rendered view of a Grid plus the watermarks needed to
// detect when it must be recomputed: the grid's eviction count and its
// total line count (ClearAll doesn't bump evictions per spec.md §4.4, so
// the line count is the second signal; mutations that change neither rely
// on MarkDirty). Session (§3) describes this as "a
// cached styled-line sequence with a length watermark used to detect
// invalidation."
type Cache struct {
	lines        []Line
	viewportRows int

	lastEvictions  uint64
	lastTotalLines int
	dirty          bool
}

// NewCache creates an empty, dirty cache for the given viewport height.
func NewCache(viewportRows int) *Cache {
	return &Cache{viewportRows: viewportRows, dirty: true}
}

// MarkDirty flags the cache for recomputation on the next Render call.
// The event loop calls this on any grid mutation (append, commit, clear).
func (c *Cache) MarkDirty() {
	c.dirty = true
}

// IsDirty reports whether Render would recompute on the next call.
func (c *Cache) IsDirty() bool {
	return c.dirty
}

// Resize changes the cached viewport height and forces a recompute.
func (c *Cache) Resize(rows int) {
	c.viewportRows = rows
	c.dirty = true
}

// Render returns the cached view, recomputing from g only if dirty or if
// g's eviction/total-line watermarks have advanced since the last call.
func (c *Cache) Render(g *Grid) []Line {
	evictions := g.Evictions()
	total := g.TotalLines()
	if !c.dirty && evictions == c.lastEvictions && total == c.lastTotalLines {
		return c.lines
	}
	c.lines = g.RenderView(c.viewportRows)
	c.lastEvictions = evictions
	c.lastTotalLines = total
	c.dirty = false
	return c.lines
}
