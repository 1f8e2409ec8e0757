package color

// Descriptor identifies how a cell's color was specified in the byte
// stream, mirroring the ANSI color-selection forms SGR 38/48 support.
// The zero value is Default.
type Descriptor struct {
	kind descriptorKind
	idx  uint8 // valid when kind == descriptorNamed or descriptorIndexed
	rgb  Color // valid when kind == descriptorRGB
}

type descriptorKind uint8

const (
	descriptorDefault descriptorKind = iota
	descriptorNamed
	descriptorIndexed
	descriptorRGB
)

// Default is the theme's default foreground/background, depending on
// context.
var Default = Descriptor{kind: descriptorDefault}

// Named constructs a descriptor for one of the 16 base ANSI colors
// (0-7 normal, 8-15 bright). The index is masked to 0-15.
func Named(index int) Descriptor {
	return Descriptor{kind: descriptorNamed, idx: uint8(index & 0x0f)}
}

// Indexed constructs a descriptor for one of the 256 palette entries.
func Indexed(index int) Descriptor {
	return Descriptor{kind: descriptorIndexed, idx: uint8(index)}
}

// RGBDescriptor constructs a pass-through 24-bit descriptor.
func RGBDescriptor(c Color) Descriptor {
	return Descriptor{kind: descriptorRGB, rgb: c}
}

// Palette maps the 256 ANSI color indices to concrete RGB, resolving
// Descriptor values against the active theme. Every index 0-255 always
// resolves — there is no partial palette.
type Palette struct {
	entries     [256]Color
	foreground  Color
	background  Color
	cursor      Color
}

// DefaultDark is the built-in dark color scheme used when no theme
// configuration overrides it.
func DefaultDark() *Palette {
	p := &Palette{
		foreground: Color{R: 229, G: 229, B: 229},
		background: Color{R: 0, G: 0, B: 0},
		cursor:     Color{R: 229, G: 229, B: 229},
	}

	// 0-7: standard colors
	std := [8]Color{
		{0, 0, 0}, {205, 49, 49}, {13, 188, 121}, {229, 229, 16},
		{36, 114, 200}, {188, 63, 188}, {17, 168, 205}, {229, 229, 229},
	}
	// 8-15: bright colors
	bright := [8]Color{
		{102, 102, 102}, {241, 76, 76}, {35, 209, 139}, {245, 245, 67},
		{59, 142, 234}, {214, 112, 214}, {41, 184, 219}, {255, 255, 255},
	}
	for i := 0; i < 8; i++ {
		p.entries[i] = std[i]
		p.entries[8+i] = bright[i]
	}

	// 16-231: 6x6x6 RGB cube
	i := 16
	steps := [6]uint8{0, 51, 102, 153, 204, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.entries[i] = Color{R: steps[r], G: steps[g], B: steps[b]}
				i++
			}
		}
	}

	// 232-255: grayscale ramp
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		p.entries[232+j] = Color{R: gray, G: gray, B: gray}
	}

	return p
}

// NewPalette builds a palette from 16 named colors plus 240 indexed
// overrides (indices 16-255), as loaded from theme configuration. Any
// index not present in overrides keeps DefaultDark's value, so every
// index still resolves.
func NewPalette(named [16]Color, overrides map[int]Color, fg, bg, cursor Color) *Palette {
	p := DefaultDark()
	for i := 0; i < 16; i++ {
		p.entries[i] = named[i]
	}
	for idx, c := range overrides {
		if idx >= 16 && idx < 256 {
			p.entries[idx] = c
		}
	}
	p.foreground = fg
	p.background = bg
	p.cursor = cursor
	return p
}

// Foreground returns the theme's default foreground color.
func (p *Palette) Foreground() Color { return p.foreground }

// Background returns the theme's default background color.
func (p *Palette) Background() Color { return p.background }

// Cursor returns the theme's cursor color.
func (p *Palette) Cursor() Color { return p.cursor }

// Resolve is the total function from a color Descriptor to concrete RGB.
// Out-of-range indexed/named descriptors are impossible by construction
// (Named/Indexed mask their input), so this never needs a documented
// fallback beyond Default resolving to fg.
func (p *Palette) Resolve(d Descriptor, fg bool) Color {
	switch d.kind {
	case descriptorNamed:
		return p.entries[d.idx&0x0f]
	case descriptorIndexed:
		return p.entries[d.idx]
	case descriptorRGB:
		return d.rgb
	default:
		if fg {
			return p.foreground
		}
		return p.background
	}
}

// Entry returns the raw palette entry at index (0-255) regardless of
// Descriptor semantics, used by theme export/inspection tooling.
func (p *Palette) Entry(index int) Color {
	return p.entries[index&0xff]
}
