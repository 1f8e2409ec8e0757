package color

// Attr is a bitmask of style attribute flags, mirrored from the teacher's
// CellFlags (go-headless-term's cell.go) but trimmed to the attributes
// spec.md §3 enumerates.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrDim
	AttrReverse
	AttrBlink
	AttrHidden
)

// Has reports whether all bits in mask are set.
func (a Attr) Has(mask Attr) bool { return a&mask == mask }

// Style is the full set of rendering attributes for a span: flags plus an
// optional foreground/background color descriptor. A zero Style is the
// theme's default (no flags, Default fg/bg).
type Style struct {
	Attrs Attr
	Fg    Descriptor
	Bg    Descriptor
}

// Reset returns the cleared style: no flags, default fg/bg.
func Reset() Style {
	return Style{}
}

// WithAttr returns a copy of s with the given attribute set.
func (s Style) WithAttr(a Attr) Style {
	s.Attrs |= a
	return s
}

// WithoutAttr returns a copy of s with the given attribute cleared.
func (s Style) WithoutAttr(a Attr) Style {
	s.Attrs &^= a
	return s
}

// WithFg returns a copy of s with the foreground descriptor replaced.
func (s Style) WithFg(d Descriptor) Style {
	s.Fg = d
	return s
}

// WithBg returns a copy of s with the background descriptor replaced.
func (s Style) WithBg(d Descriptor) Style {
	s.Bg = d
	return s
}

// Equal reports whether two styles are structurally identical — used by
// the cell grid to decide whether an appended run can merge into the
// active span or must start a new one.
func (s Style) Equal(other Style) bool {
	return s == other
}

// Resolved is a Style with its color descriptors resolved to concrete RGB
// against a palette, ready for a render sink.
type Resolved struct {
	Attrs Attr
	Fg    Color
	Bg    Color
}

// Resolve resolves s's color descriptors against p. Reverse video is
// applied here (fg/bg swapped) since it's purely a rendering concern, not
// a stored attribute transformation.
func (s Style) Resolve(p *Palette) Resolved {
	fg := p.Resolve(s.Fg, true)
	bg := p.Resolve(s.Bg, false)
	if s.Attrs.Has(AttrReverse) {
		fg, bg = bg, fg
	}
	return Resolved{Attrs: s.Attrs, Fg: fg, Bg: bg}
}
