package grid

import "testing"

func commitN(g *Grid, n int) {
	for i := 0; i < n; i++ {
		g.AppendToActive(Span{Text: "x"})
		g.CommitLine()
	}
}

func TestScrollbackBoundExactness(t *testing.T) {
	const limit = 5
	g := New(limit)
	commitN(g, 20)

	if g.ScrollbackLen() != limit {
		t.Fatalf("scrollback len = %d, want %d", g.ScrollbackLen(), limit)
	}
	if g.TotalLines() != limit+1 {
		t.Fatalf("total lines = %d, want %d", g.TotalLines(), limit+1)
	}
}

func TestScrollbackBoundSingleLine(t *testing.T) {
	g := New(1)
	commitN(g, 3)
	if g.ScrollbackLen() != 1 {
		t.Fatalf("scrollback len = %d, want 1", g.ScrollbackLen())
	}
	if g.TotalLines() != 2 {
		t.Fatalf("total lines = %d, want 2", g.TotalLines())
	}
}

func TestEvictionIsMostRecentSuffix(t *testing.T) {
	const limit = 3
	g := New(limit)
	for i := 0; i < 10; i++ {
		g.AppendToActive(Span{Text: string(rune('a' + i))})
		g.CommitLine()
	}
	// Oldest retained line should be the 8th committed ("h"), since lines
	// a..g (7 of 10) were evicted leaving the most recent 3: h, i, j.
	want := []string{"h", "i", "j"}
	for i, w := range want {
		l, ok := g.ScrollbackLine(i)
		if !ok {
			t.Fatalf("missing scrollback line %d", i)
		}
		if l.Text() != w {
			t.Errorf("scrollback[%d] = %q, want %q", i, l.Text(), w)
		}
	}
}

func TestEvictionIdempotentPerCommit(t *testing.T) {
	const limit = 4
	g := New(limit)
	commitN(g, limit) // fill exactly to bound, no eviction yet
	if g.Evictions() != 0 {
		t.Fatalf("evictions = %d, want 0 before exceeding bound", g.Evictions())
	}
	g.AppendToActive(Span{Text: "x"})
	g.CommitLine()
	if g.Evictions() != 1 {
		t.Fatalf("evictions = %d, want 1 after exceeding bound by one commit", g.Evictions())
	}
	g.AppendToActive(Span{Text: "x"})
	g.CommitLine()
	if g.Evictions() != 2 {
		t.Fatalf("evictions = %d, want 2 after a second over-bound commit", g.Evictions())
	}
}

func TestRenderViewSuffixCorrectness(t *testing.T) {
	g := New(10)
	commitN(g, 5) // committed lines: x x x x x, then fresh active line
	g.AppendToActive(Span{Text: "active"})

	view := g.RenderView(3)
	if len(view) != 3 {
		t.Fatalf("len(view) = %d, want 3", len(view))
	}
	if view[len(view)-1].Text() != "active" {
		t.Errorf("last rendered line = %q, want active line last", view[len(view)-1].Text())
	}
}

func TestRenderViewIncludesActiveWhenSmallerThanTotal(t *testing.T) {
	g := New(10)
	commitN(g, 5)
	g.AppendToActive(Span{Text: "tail"})

	view := g.RenderView(1)
	if len(view) != 1 {
		t.Fatalf("len(view) = %d, want 1", len(view))
	}
	if view[0].Text() != "tail" {
		t.Errorf("sole rendered line = %q, want active line", view[0].Text())
	}
}

func TestRenderViewWiderThanGrid(t *testing.T) {
	g := New(10)
	commitN(g, 2)
	view := g.RenderView(100)
	if len(view) != g.TotalLines() {
		t.Fatalf("len(view) = %d, want %d", len(view), g.TotalLines())
	}
}

func TestTruncateActiveASCII(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "abc"})
	g.TruncateActive()
	if g.ActiveLine().Text() != "ab" {
		t.Errorf("got %q, want %q", g.ActiveLine().Text(), "ab")
	}
}

func TestTruncateActiveUTF8Boundary(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "aé"}) // 'a' + e-acute (2-byte rune)
	g.TruncateActive()
	if g.ActiveLine().Text() != "a" {
		t.Errorf("got %q, want %q", g.ActiveLine().Text(), "a")
	}
}

func TestTruncateActiveEmpty(t *testing.T) {
	g := New(10)
	g.TruncateActive() // must not panic
	if g.ActiveLine().Text() != "" {
		t.Errorf("expected empty active line, got %q", g.ActiveLine().Text())
	}
}

func TestTruncateActiveDropsEmptiedSpan(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "a"})
	g.AppendToActive(Span{Text: "b", Style: Span{}.Style}) // same zero style, merges
	g.TruncateActive()
	g.TruncateActive()
	if len(g.ActiveLine().Spans) != 0 {
		t.Errorf("expected no spans left, got %v", g.ActiveLine().Spans)
	}
}

func TestResetActiveLinePosition(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "abc"})
	g.ResetActiveLinePosition()
	if g.ActiveLine().Text() != "" {
		t.Errorf("expected reset active line to be empty, got %q", g.ActiveLine().Text())
	}
}

func TestClearAllLeavesEvictionsUndisturbed(t *testing.T) {
	g := New(2)
	commitN(g, 5)
	before := g.Evictions()
	g.ClearAll()
	if g.Evictions() != before {
		t.Errorf("ClearAll changed evictions: %d -> %d", before, g.Evictions())
	}
	if g.ScrollbackLen() != 0 || g.TotalLines() != 1 {
		t.Errorf("ClearAll did not reset scrollback/active")
	}
}

func TestAppendMergesSameStyleSpans(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "ab"})
	g.AppendToActive(Span{Text: "cd"})
	if len(g.ActiveLine().Spans) != 1 {
		t.Fatalf("expected spans to merge, got %d spans", len(g.ActiveLine().Spans))
	}
	if g.ActiveLine().Text() != "abcd" {
		t.Errorf("got %q", g.ActiveLine().Text())
	}
}

func TestAppendSplitsOnStyleChange(t *testing.T) {
	g := New(10)
	g.AppendToActive(Span{Text: "ab"})
	g.AppendToActive(Span{Text: "cd", Hyperlink: "https://example.com"})
	if len(g.ActiveLine().Spans) != 2 {
		t.Fatalf("expected 2 spans after hyperlink change, got %d", len(g.ActiveLine().Spans))
	}
}

func TestCacheInvalidatesOnCommit(t *testing.T) {
	g := New(10)
	c := NewCache(5)

	first := c.Render(g)
	if !sameSlice(first, c.Render(g)) {
		t.Error("expected cached render to be stable across no-op calls")
	}

	commitN(g, 1)
	second := c.Render(g)
	if sameSlice(first, second) {
		t.Error("expected cache to recompute after a commit bumped total lines")
	}
}

func TestCacheInvalidatesOnEviction(t *testing.T) {
	g := New(2)
	c := NewCache(5)
	commitN(g, 2)
	c.Render(g)

	commitN(g, 1) // triggers an eviction, total_lines stays the same
	if c.IsDirty() {
		// A commit alone does not set the dirty flag, so only the eviction
		// watermark can trigger the recompute checked below.
		t.Fatal("expected dirty flag to stay clear after a bare commit")
	}
	view := c.Render(g)
	if len(view) == 0 {
		t.Fatal("expected non-empty render")
	}
	if c.lastEvictions != g.Evictions() {
		t.Fatalf("cache eviction watermark = %d, want %d after recompute", c.lastEvictions, g.Evictions())
	}
}

func TestCacheResizeForcesRecompute(t *testing.T) {
	g := New(10)
	commitN(g, 5)
	c := NewCache(3)
	v1 := c.Render(g)
	if len(v1) != 3 {
		t.Fatalf("len = %d, want 3", len(v1))
	}
	c.Resize(2)
	v2 := c.Render(g)
	if len(v2) != 2 {
		t.Fatalf("len = %d, want 2 after resize", len(v2))
	}
}

func sameSlice(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text() != b[i].Text() {
			return false
		}
	}
	return true
}
