// Package grid owns the styled line sequence that backs a terminal's
// visible history: an ordered list of immutable scrollback lines plus one
// mutable active line, bounded by a scrollback limit. Grounded on the
// teacher's buffer.go (ScrollbackProvider eviction contract) and thicc's
// internal/terminal/scrollback.go (circular-buffer eviction by overwrite).
package grid

import (
	"github.com/quillterm/quillterm/color"
)

// Span is a contiguous run of text sharing one style — the unit of
// storage in a Line. Text is always non-empty UTF-8.
type Span struct {
	Text  string
	Style color.Style
	// Hyperlink is the OSC 8 URI active when this span was written, or ""
	// if none (supplemental feature, SPEC_FULL.md §3).
	Hyperlink string
}

// Line is an ordered sequence of Spans representing one visible row.
// Lines are immutable once committed to scrollback; only the grid's
// active (last) line may still be mutated in place.
type Line struct {
	Spans []Span
}

// Text concatenates all spans in the line, ignoring style.
func (l Line) Text() string {
	var n int
	for _, s := range l.Spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range l.Spans {
		b = append(b, s.Text...)
	}
	return string(b)
}

// Grid is the concatenation of scrollback lines plus the active line. It
// owns its storage; callers only ever observe borrowed views.
//
// Invariants (spec.md §3):
//  1. total_lines <= scrollback_limit + 1
//  2. excess lines are evicted from the front in insertion order
//  3. visible text is always the suffix of the grid that fits the
//     viewport — the grid owns history, the renderer owns geometry.
type Grid struct {
	limit     int // scrollback_lines; total retained lines is limit+1
	lines     []Line // ring buffer of committed scrollback lines
	start     int
	count     int
	active    Line
	evictions uint64 // monotonically increasing, used by the line cache (grid.Cache) for invalidation
}

// New creates a Grid bounded to the given scrollback line limit. limit
// must be >= 1 (enforced by config.Load, not here — the grid trusts its
// caller).
func New(limit int) *Grid {
	return &Grid{
		limit: limit,
		lines: make([]Line, limit),
	}
}

// AppendToActive merges span into the active line. If the span's style
// equals the active line's last span, the text is concatenated in place;
// otherwise a new span is pushed.
func (g *Grid) AppendToActive(span Span) {
	if span.Text == "" {
		return
	}
	n := len(g.active.Spans)
	if n > 0 {
		last := &g.active.Spans[n-1]
		if last.Style.Equal(span.Style) && last.Hyperlink == span.Hyperlink {
			last.Text += span.Text
			return
		}
	}
	g.active.Spans = append(g.active.Spans, span)
}

// ActiveLine returns the current (uncommitted) active line.
func (g *Grid) ActiveLine() Line {
	return g.active
}

// TruncateActive removes the last UTF-8 code point's worth of text from
// the active line's last span (used by backspace, 0x08). Does nothing if
// the active line is empty. If removing the rune empties the span, the
// span itself is dropped.
func (g *Grid) TruncateActive() {
	n := len(g.active.Spans)
	if n == 0 {
		return
	}
	last := &g.active.Spans[n-1]
	if last.Text == "" {
		g.active.Spans = g.active.Spans[:n-1]
		g.TruncateActive()
		return
	}
	last.Text = dropLastRune(last.Text)
	if last.Text == "" {
		g.active.Spans = g.active.Spans[:n-1]
	}
}

// ResetActiveLinePosition clears the active line's spans without
// committing it, used for a bare '\r' (carriage return resets span
// position within the active line per spec.md §4.3). This is a
// conservative reading of "resets span position": in an append-only span
// model there is no column to seek back to, so a full clear is the
// simplest overwrite-safe behavior, but it also drops any tail a real
// progress-bar-style redraw (CR then shorter text, no trailing clear)
// would have left on screen. A column-aware overwrite would need the grid
// to track per-column ranges rather than append-only spans.
func (g *Grid) ResetActiveLinePosition() {
	g.active = Line{}
}

// CommitLine freezes the active line into scrollback and starts a fresh
// empty active line. If the resulting total exceeds limit+1, the oldest
// lines are dropped until within bound; each dropped line bumps
// evictions by one.
func (g *Grid) CommitLine() {
	g.push(g.active)
	g.active = Line{}
}

func (g *Grid) push(l Line) {
	if g.limit <= 0 {
		g.evictions++
		return
	}
	if g.count < g.limit {
		g.lines[(g.start+g.count)%g.limit] = l
		g.count++
		return
	}
	g.lines[g.start] = l
	g.start = (g.start + 1) % g.limit
	g.evictions++
}

// ClearAll empties the grid (scrollback and active line). eviction_count
// is left undisturbed per spec.md §4.4; callers that cache rendered lines
// must invalidate on ClearAll explicitly (grid.Cache compares TotalLines
// and relies on MarkDirty for this).
func (g *Grid) ClearAll() {
	g.start = 0
	g.count = 0
	g.active = Line{}
}

// ScrollbackLen returns the number of committed lines currently retained.
func (g *Grid) ScrollbackLen() int {
	return g.count
}

// ScrollbackLine returns the committed line at logical index (0 = oldest
// retained), or false if out of range.
func (g *Grid) ScrollbackLine(index int) (Line, bool) {
	if index < 0 || index >= g.count || g.limit == 0 {
		return Line{}, false
	}
	return g.lines[(g.start+index)%g.limit], true
}

// TotalLines returns scrollback length plus the (possibly empty) active
// line, matching spec.md §3's total_lines invariant target.
func (g *Grid) TotalLines() int {
	return g.count + 1
}

// Evictions returns the monotonically increasing count of lines dropped
// from the front since the grid was created.
func (g *Grid) Evictions() uint64 {
	return g.evictions
}

// RenderView returns the trailing viewportRows lines (scrollback suffix
// plus the active line), or fewer if the grid is shorter. The returned
// slice is a fresh copy — callers may not assume it aliases grid storage
// across subsequent mutations.
func (g *Grid) RenderView(viewportRows int) []Line {
	if viewportRows <= 0 {
		return nil
	}
	total := g.TotalLines()
	n := viewportRows
	if n > total {
		n = total
	}
	out := make([]Line, 0, n)

	// How many of the n lines come from scrollback vs. the active line.
	fromScrollback := n - 1
	if fromScrollback > g.count {
		fromScrollback = g.count
	}
	if fromScrollback < 0 {
		fromScrollback = 0
	}
	startIdx := g.count - fromScrollback
	for i := startIdx; i < g.count; i++ {
		l, _ := g.ScrollbackLine(i)
		out = append(out, l)
	}
	if n >= 1 {
		out = append(out, g.active)
	}
	return out
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	i := len(s) - 1
	for i > 0 && isUTF8Continuation(s[i]) {
		i--
	}
	return s[:i]
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}
