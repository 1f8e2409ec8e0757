package color

import "testing"

func TestDefaultDarkResolvesAllIndices(t *testing.T) {
	p := DefaultDark()
	for i := 0; i < 256; i++ {
		c := p.Entry(i)
		_ = c // construction alone proves no panic; every index is populated
	}
}

func TestResolveNamed(t *testing.T) {
	p := DefaultDark()
	red := p.Resolve(Named(1), true)
	if red != p.Entry(1) {
		t.Errorf("named(1) = %+v, want %+v", red, p.Entry(1))
	}
}

func TestResolveIndexedCube(t *testing.T) {
	p := DefaultDark()
	// index 16 is the cube's (0,0,0) corner: pure black.
	if got := p.Resolve(Indexed(16), true); got != (Color{0, 0, 0}) {
		t.Errorf("indexed(16) = %+v, want black", got)
	}
	// index 231 is the cube's (5,5,5) corner: pure white.
	if got := p.Resolve(Indexed(231), true); got != (Color{255, 255, 255}) {
		t.Errorf("indexed(231) = %+v, want white", got)
	}
}

func TestResolveGrayscaleRamp(t *testing.T) {
	p := DefaultDark()
	first := p.Entry(232)
	last := p.Entry(255)
	if first.R >= last.R {
		t.Errorf("grayscale ramp should increase: %d >= %d", first.R, last.R)
	}
}

func TestResolveRGBPassThrough(t *testing.T) {
	p := DefaultDark()
	c := RGB(17, 34, 51)
	if got := p.Resolve(RGBDescriptor(c), true); got != c {
		t.Errorf("rgb descriptor should pass through unchanged, got %+v", got)
	}
}

func TestResolveDefault(t *testing.T) {
	p := DefaultDark()
	if got := p.Resolve(Default, true); got != p.Foreground() {
		t.Errorf("default fg = %+v, want %+v", got, p.Foreground())
	}
	if got := p.Resolve(Default, false); got != p.Background() {
		t.Errorf("default bg = %+v, want %+v", got, p.Background())
	}
}

func TestNewPaletteOverridesAndFallsBack(t *testing.T) {
	var named [16]Color
	for i := range named {
		named[i] = RGB(uint8(i), uint8(i), uint8(i))
	}
	overrides := map[int]Color{100: RGB(1, 2, 3)}
	p := NewPalette(named, overrides, RGB(9, 9, 9), RGB(1, 1, 1), RGB(5, 5, 5))

	if got := p.Entry(100); got != (Color{1, 2, 3}) {
		t.Errorf("override not applied: %+v", got)
	}
	// index 200 has no override, should fall back to DefaultDark's cube value.
	if got := p.Entry(200); got == (Color{}) {
		t.Errorf("expected DefaultDark fallback at index 200, got zero value")
	}
}

func TestStyleResolveReverse(t *testing.T) {
	p := DefaultDark()
	s := Style{Fg: Named(1), Bg: Named(2)}.WithAttr(AttrReverse)
	r := s.Resolve(p)
	if r.Fg != p.Entry(2) || r.Bg != p.Entry(1) {
		t.Errorf("reverse should swap fg/bg, got fg=%+v bg=%+v", r.Fg, r.Bg)
	}
}

func TestStyleEqual(t *testing.T) {
	a := Style{Attrs: AttrBold, Fg: Named(1)}
	b := Style{Attrs: AttrBold, Fg: Named(1)}
	c := Style{Attrs: AttrBold, Fg: Named(2)}
	if !a.Equal(b) {
		t.Error("expected a == b")
	}
	if a.Equal(c) {
		t.Error("expected a != c")
	}
}
