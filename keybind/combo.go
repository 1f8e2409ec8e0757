// Package keybind translates (key, modifiers) events into Action values,
// resolving custom overrides before named config actions before built-in
// defaults (spec.md §4.8). Grounded on thicc's internal/terminal/input.go
// (keyToBytes, the Ctrl-key-to-control-byte table, QuickCommandMode/
// PassthroughMode escape hatch) and on gdamore/tcell/v2 itself (jcd-as-tcell
// in the pack) for the Key/ModMask/named-key vocabulary.
package keybind

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Combo is a parsed key-combination: modifiers plus either a tcell.Key
// (named key, e.g. Enter/F5) or a bare rune (printable letter).
type Combo struct {
	Mods tcell.ModMask
	Key  tcell.Key  // tcell.KeyRune when Rune is meaningful
	Rune rune
}

// namedKeys maps spec.md §4.8's named-key vocabulary
// (Tab|Enter|Esc|Space|Up|Down|Left|Right|F1..F12) to tcell.Key constants.
var namedKeys = map[string]tcell.Key{
	"tab":   tcell.KeyTab,
	"enter": tcell.KeyEnter,
	"esc":   tcell.KeyEscape,
	"space": tcell.KeyRune, // handled specially below (rune ' ')
	"up":    tcell.KeyUp,
	"down":  tcell.KeyDown,
	"left":  tcell.KeyLeft,
	"right": tcell.KeyRight,
	"f1":    tcell.KeyF1,
	"f2":    tcell.KeyF2,
	"f3":    tcell.KeyF3,
	"f4":    tcell.KeyF4,
	"f5":    tcell.KeyF5,
	"f6":    tcell.KeyF6,
	"f7":    tcell.KeyF7,
	"f8":    tcell.KeyF8,
	"f9":    tcell.KeyF9,
	"f10":   tcell.KeyF10,
	"f11":   tcell.KeyF11,
	"f12":   tcell.KeyF12,
}

// ParseError reports a malformed key-combo string, failing config load per
// spec.md §4.8 ("Invalid combos fail at configuration load with a
// descriptive error").
type ParseError struct {
	Combo string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("keybind: invalid key combo %q: %s", e.Combo, e.Msg)
}

// ParseCombo tokenizes a key-combo string (e.g. "Ctrl+Shift+V", "F5", "a")
// on '+' into modifiers and a key name, case-insensitively.
func ParseCombo(s string) (Combo, error) {
	if s == "" {
		return Combo{}, &ParseError{Combo: s, Msg: "empty combo"}
	}
	parts := strings.Split(s, "+")
	var mods tcell.ModMask
	keyPart := ""
	for i, p := range parts {
		last := i == len(parts)-1
		lp := strings.ToLower(strings.TrimSpace(p))
		switch lp {
		case "ctrl":
			mods |= tcell.ModCtrl
		case "shift":
			mods |= tcell.ModShift
		case "alt":
			mods |= tcell.ModAlt
		default:
			if !last {
				return Combo{}, &ParseError{Combo: s, Msg: fmt.Sprintf("unknown modifier %q", p)}
			}
			keyPart = lp
		}
	}
	if keyPart == "" {
		return Combo{}, &ParseError{Combo: s, Msg: "missing key name"}
	}

	if keyPart == "space" {
		return Combo{Mods: mods, Key: tcell.KeyRune, Rune: ' '}, nil
	}
	if k, ok := namedKeys[keyPart]; ok {
		return Combo{Mods: mods, Key: k}, nil
	}
	// Single letter/digit: printable rune key.
	runes := []rune(keyPart)
	if len(runes) == 1 {
		return Combo{Mods: mods, Key: tcell.KeyRune, Rune: runes[0]}, nil
	}
	return Combo{}, &ParseError{Combo: s, Msg: fmt.Sprintf("unrecognized key name %q", keyPart)}
}

// ctrlKeyRune reports the base printable rune for one of tcell's dedicated
// Ctrl+<key> constants (tcell delivers Ctrl+A as tcell.KeyCtrlA, an ASCII
// control-code key value, not as KeyRune + ModCtrl).
func ctrlKeyRune(k tcell.Key) (rune, bool) {
	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return rune('a' + int(k) - int(tcell.KeyCtrlA)), true
	case k == tcell.KeyCtrlBackslash:
		return '\\', true
	case k == tcell.KeyCtrlRightSq:
		return ']', true
	case k == tcell.KeyCtrlCarat:
		return '^', true
	case k == tcell.KeyCtrlUnderscore:
		return '_', true
	default:
		return 0, false
	}
}

// fromEvent builds a Combo from a live tcell key event, normalizing letter
// runes to lowercase so "Ctrl+Shift+v" and "Ctrl+Shift+V" resolve to the
// combo string produced by config (modifiers carry case/shift state, not
// the rune itself), and folding tcell's dedicated Ctrl+<letter> key
// constants back into Mods=Ctrl + a rune so they compare equal to a combo
// parsed from a "Ctrl+x" config string.
func fromEvent(ev *tcell.EventKey) Combo {
	mods := ev.Modifiers()
	if r, ok := ctrlKeyRune(ev.Key()); ok {
		return Combo{Mods: mods | tcell.ModCtrl, Key: tcell.KeyRune, Rune: r}
	}
	if ev.Key() == tcell.KeyRune {
		return Combo{Mods: mods &^ tcell.ModShift, Key: tcell.KeyRune, Rune: toLowerASCII(ev.Rune())}
	}
	return Combo{Mods: mods, Key: ev.Key()}
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// normalized returns c with any letter rune lowercased and Shift stripped
// from Mods when the key is a printable rune — letters carry case via the
// rune itself in spec.md §4.8's resolution, not via the Shift bit, so
// "Ctrl+Shift+V" and "Ctrl+v" with shift held both key off the same combo
// identity for map lookups where that's the intent. Named keys keep Shift.
func (c Combo) normalized() Combo {
	if c.Key == tcell.KeyRune {
		c.Rune = toLowerASCII(c.Rune)
		c.Mods &^= tcell.ModShift
	}
	return c
}

// String renders the combo back to canonical "Mod+Mod+Key" form, used for
// the overlapping-default-binding validation warning (spec.md §9).
func (c Combo) String() string {
	var b strings.Builder
	if c.Mods&tcell.ModCtrl != 0 {
		b.WriteString("Ctrl+")
	}
	if c.Mods&tcell.ModShift != 0 {
		b.WriteString("Shift+")
	}
	if c.Mods&tcell.ModAlt != 0 {
		b.WriteString("Alt+")
	}
	if c.Key == tcell.KeyRune {
		b.WriteRune(c.Rune)
		return b.String()
	}
	for name, k := range namedKeys {
		if k == c.Key && name != "space" {
			b.WriteString(strings.ToUpper(name[:1]) + name[1:])
			return b.String()
		}
	}
	b.WriteString(fmt.Sprintf("Key(%d)", c.Key))
	return b.String()
}
