package color

import "testing"

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#112233")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (Color{R: 0x11, G: 0x22, B: 0x33}) {
		t.Errorf("got %+v", c)
	}
}

func TestParseHexInvalid(t *testing.T) {
	if _, err := ParseHex("112233"); err == nil {
		t.Error("expected error for missing #")
	}
	if _, err := ParseHex("#zzzzzz"); err == nil {
		t.Error("expected error for non-hex digits")
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB(0x11, 0x22, 0x33)
	if c.Hex() != "#112233" {
		t.Errorf("got %s", c.Hex())
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := RGB(10, 20, 30)
	b := RGB(200, 100, 50)

	if got := a.Blend(b, 0); got != a {
		t.Errorf("blend(b,0) = %+v, want %+v", got, a)
	}
	if got := a.Blend(b, 1); got != b {
		t.Errorf("blend(b,1) = %+v, want %+v", got, b)
	}
	if got := a.Blend(a, 0.5); got != a {
		t.Errorf("blend(a,0.5) = %+v, want %+v", got, a)
	}
}

func TestBlendMonotone(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(255, 255, 255)

	var prev uint8
	for i, t2 := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := a.Blend(b, t2)
		if i > 0 && got.R < prev {
			t.Errorf("blend not monotone at t=%v: %d < %d", t2, got.R, prev)
		}
		prev = got.R
	}
}

func TestBrightness(t *testing.T) {
	white := RGB(255, 255, 255)
	black := RGB(0, 0, 0)
	if !white.IsLight() {
		t.Error("white should be light")
	}
	if black.IsLight() {
		t.Error("black should not be light")
	}
}
