// Package color implements the 24-bit color model and themeable 256-entry
// palette that the rest of quillterm's core resolves ANSI color descriptors
// against.
package color

import (
	"fmt"
	"math"
)

// Color is a 24-bit RGB color. Unlike image/color.RGBA it carries no alpha
// channel — terminal cells are always opaque.
type Color struct {
	R, G, B uint8
}

// RGB constructs a Color from raw red/green/blue components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseHex parses a "#RRGGBB" literal. Returns an error if the string isn't
// exactly 7 characters starting with '#' or contains non-hex digits.
func ParseHex(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("color: invalid hex literal %q, want #RRGGBB", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("color: invalid hex literal %q: %w", s, err)
	}
	return Color{R: r, G: g, B: b}, nil
}

// MustParseHex is like ParseHex but panics on error. Intended for
// compile-time-constant literals (default theme tables), never for
// user-supplied input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the color as a "#RRGGBB" literal.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Brightness returns the perceptual brightness of the color in [0, 255]
// using the standard Rec. 601 luma coefficients.
func (c Color) Brightness() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// IsLight reports whether the color reads as visually light (brightness
// above the midpoint), useful for picking a contrasting foreground.
func (c Color) IsLight() bool {
	return c.Brightness() > 127.5
}

// Blend linearly interpolates between c and other by factor t, clamped to
// [0,1], with rounded integer channel output. Blend(other, 0) == c and
// Blend(other, 1) == other.
func (c Color) Blend(other Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return other
	}
	return Color{
		R: lerpChannel(c.R, other.R, t),
		G: lerpChannel(c.G, other.G, t),
		B: lerpChannel(c.B, other.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(clamp(v, 0, 255)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
