package keybind

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
)

// Resolver translates (key, modifiers) events into Actions, in the
// resolution order spec.md §4.8 specifies: (1) custom_keybindings (user
// overrides), (2) named actions from config keybindings, (3) built-in
// defaults. Passthrough mode (SPEC_FULL.md §3's "quick command / passthrough
// mode" supplement, adapted from thicc's Panel.PassthroughMode) short-circuits
// all three tiers while active.
type Resolver struct {
	custom      map[Combo]string // combo -> script id (hooks.Executor key)
	named       map[Combo]Action
	passthrough bool

	collisions []string
}

// NewResolver creates an empty Resolver; populate it with Bind/BindNamed.
func NewResolver() *Resolver {
	return &Resolver{
		custom: make(map[Combo]string),
		named:  make(map[Combo]Action),
	}
}

// Bind registers a custom keybinding (combo -> script id), the highest
// resolution-order tier.
func (r *Resolver) Bind(combo Combo, scriptID string) {
	r.custom[combo.normalized()] = scriptID
}

// BindNamed registers a key combo for a named config action (tier 2).
// actionName must be one of spec.md §4.8's config-facing action names.
func (r *Resolver) BindNamed(combo Combo, actionName string) error {
	a, ok := namedActions[actionName]
	if !ok {
		return fmt.Errorf("keybind: unknown action name %q", actionName)
	}
	r.named[combo.normalized()] = a
	return nil
}

// LoadConfig parses a map of actionName -> comboString (config's
// `keybindings` group) and a map of comboString -> scriptID (config's
// `custom_keybindings`), binding both and returning a ParseError on the
// first malformed combo string. Collisions among named actions sharing a
// combo are detected here, before BindNamed's map assignment collapses
// them, and are later surfaced through CollisionWarnings.
func (r *Resolver) LoadConfig(named map[string]string, custom map[string]string) error {
	byCombo := make(map[Combo][]string)
	for action, combo := range named {
		c, err := ParseCombo(combo)
		if err != nil {
			return err
		}
		byCombo[c] = append(byCombo[c], action)
		if err := r.BindNamed(c, action); err != nil {
			return err
		}
	}
	r.collisions = collisionWarnings(byCombo)

	for combo, scriptID := range custom {
		c, err := ParseCombo(combo)
		if err != nil {
			return err
		}
		r.Bind(c, scriptID)
	}
	return nil
}

// collisionWarnings reports combos claimed by more than one named action —
// spec.md §9's resolved Open Question ("paste and split_vertical both
// default to Ctrl+Shift+V"): custom_keybindings takes precedence, but the
// loader surfaces a non-fatal validation warning for any such overlap. Must
// run against the action -> combo map before it collapses into Resolver's
// combo -> Action storage, or the second BindNamed for a shared combo
// silently overwrites the first and the collision disappears.
func collisionWarnings(byCombo map[Combo][]string) []string {
	var warnings []string
	for combo, actions := range byCombo {
		if len(actions) > 1 {
			sorted := append([]string(nil), actions...)
			sort.Strings(sorted)
			warnings = append(warnings, fmt.Sprintf("combo %s resolves to multiple actions: %v", combo, sorted))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// CollisionWarnings reports the named-action combo collisions found by the
// most recent LoadConfig call.
func (r *Resolver) CollisionWarnings() []string {
	return r.collisions
}

// SetPassthrough toggles passthrough mode. While active, Resolve always
// returns SendToPty regardless of bindings.
func (r *Resolver) SetPassthrough(on bool) {
	r.passthrough = on
}

// Passthrough reports whether passthrough mode is currently active.
func (r *Resolver) Passthrough() bool {
	return r.passthrough
}

// Resolve maps a tcell key event to an Action, in spec.md §4.8's order.
func (r *Resolver) Resolve(ev *tcell.EventKey) Action {
	combo := fromEvent(ev)

	if r.passthrough {
		if isCtrlBackslash(combo) {
			r.passthrough = false
			return TogglePassthrough
		}
		return SendToPty(defaultBytes(ev))
	}

	if scriptID, ok := r.custom[combo]; ok {
		return ExecuteScript(scriptID)
	}
	if a, ok := r.named[combo]; ok {
		return a
	}
	return r.resolveDefault(ev, combo)
}

func (r *Resolver) resolveDefault(ev *tcell.EventKey, combo Combo) Action {
	if isCtrlBackslash(combo) {
		r.passthrough = true
		return TogglePassthrough
	}
	return SendToPty(defaultBytes(ev))
}

func isCtrlBackslash(c Combo) bool {
	return c.Key == tcell.KeyRune && c.Rune == '\\' && c.Mods&tcell.ModCtrl != 0
}

// defaultBytes encodes a key event into the bytes a real terminal would
// send to the shell, following thicc's keyToBytes table: printable runes
// as UTF-8, Enter as CR, Backspace as DEL, Ctrl+letter as its control byte,
// and the common named/arrow keys as their CSI sequences.
func defaultBytes(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyEscape:
		return []byte{0x1b}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	default:
		if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
			return []byte{byte(ev.Key())}
		}
		return nil
	}
}
