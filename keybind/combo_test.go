package keybind

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestParseComboModifiers(t *testing.T) {
	c, err := ParseCombo("Ctrl+Shift+V")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if c.Mods&tcell.ModCtrl == 0 || c.Mods&tcell.ModShift == 0 {
		t.Fatalf("ParseCombo did not set Ctrl/Shift: %+v", c)
	}
	if c.Key != tcell.KeyRune || c.Rune != 'v' {
		t.Fatalf("ParseCombo key = %+v, want rune v", c)
	}
}

func TestParseComboNamedKey(t *testing.T) {
	c, err := ParseCombo("F5")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if c.Key != tcell.KeyF5 {
		t.Fatalf("ParseCombo(F5) = %+v, want KeyF5", c)
	}
}

func TestParseComboSpace(t *testing.T) {
	c, err := ParseCombo("Ctrl+Space")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if c.Key != tcell.KeyRune || c.Rune != ' ' {
		t.Fatalf("ParseCombo(Ctrl+Space) = %+v, want rune ' '", c)
	}
}

func TestParseComboRejectsUnknownModifier(t *testing.T) {
	if _, err := ParseCombo("Cmd+K"); err == nil {
		t.Fatalf("expected error for unsupported modifier")
	}
}

func TestParseComboRejectsEmpty(t *testing.T) {
	if _, err := ParseCombo(""); err == nil {
		t.Fatalf("expected error for empty combo")
	}
}

func TestCtrlKeyRuneFoldsDedicatedConstants(t *testing.T) {
	r, ok := ctrlKeyRune(tcell.KeyCtrlA)
	if !ok || r != 'a' {
		t.Fatalf("ctrlKeyRune(KeyCtrlA) = (%q, %v), want ('a', true)", r, ok)
	}
	if _, ok := ctrlKeyRune(tcell.KeyF1); ok {
		t.Fatalf("ctrlKeyRune(KeyF1) should not be a ctrl key")
	}
}

func TestFromEventFoldsCtrlLetterToComboWithRune(t *testing.T) {
	ev := tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModNone)
	c := fromEvent(ev)
	parsed, err := ParseCombo("Ctrl+a")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if c.normalized() != parsed.normalized() {
		t.Fatalf("fromEvent(Ctrl+A) = %+v, want %+v", c, parsed)
	}
}
