package keybind

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestResolvePrintableSendsUTF8(t *testing.T) {
	r := NewResolver()
	ev := tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone)
	a := r.Resolve(ev)
	if a.Kind != ActionSendToPty || string(a.Bytes) != "h" {
		t.Fatalf("Resolve(h) = %+v, want SendToPty(\"h\")", a)
	}
}

func TestResolveEnterSendsCR(t *testing.T) {
	r := NewResolver()
	ev := tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	a := r.Resolve(ev)
	if a.Kind != ActionSendToPty || string(a.Bytes) != "\r" {
		t.Fatalf("Resolve(Enter) = %+v, want SendToPty(\"\\r\")", a)
	}
}

func TestResolveNamedOverridesDefault(t *testing.T) {
	r := NewResolver()
	combo, err := ParseCombo("Ctrl+Shift+V")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if err := r.BindNamed(combo, "paste"); err != nil {
		t.Fatalf("BindNamed: %v", err)
	}
	ev := tcell.NewEventKey(tcell.KeyRune, 'v', tcell.ModCtrl|tcell.ModShift)
	a := r.Resolve(ev)
	if a.Kind != ActionPaste {
		t.Fatalf("Resolve = %+v, want Paste", a)
	}
}

func TestCustomKeybindingTakesPrecedenceOverNamed(t *testing.T) {
	r := NewResolver()
	combo, _ := ParseCombo("Ctrl+Shift+V")
	_ = r.BindNamed(combo, "paste")
	r.Bind(combo, "my-script")

	ev := tcell.NewEventKey(tcell.KeyRune, 'v', tcell.ModCtrl|tcell.ModShift)
	a := r.Resolve(ev)
	if a.Kind != ActionExecuteScript || a.ScriptID != "my-script" {
		t.Fatalf("Resolve = %+v, want ExecuteScript(my-script)", a)
	}
}

func TestCollisionWarningReported(t *testing.T) {
	r := NewResolver()
	err := r.LoadConfig(map[string]string{
		"paste":   "Ctrl+Shift+V",
		"split_v": "Ctrl+Shift+V",
	}, nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	warnings := r.CollisionWarnings()
	if len(warnings) != 1 {
		t.Fatalf("CollisionWarnings() = %v, want exactly one warning", warnings)
	}
}

func TestPassthroughTogglesOnCtrlBackslash(t *testing.T) {
	r := NewResolver()
	enter := tcell.NewEventKey(tcell.KeyCtrlBackslash, 0, tcell.ModNone)
	a := r.Resolve(enter)
	if a.Kind != ActionTogglePassthrough || !r.Passthrough() {
		t.Fatalf("Ctrl+\\ did not enter passthrough mode: %+v, passthrough=%v", a, r.Passthrough())
	}

	// While in passthrough, any other key goes straight to the pty even
	// if it's bound to a named action.
	combo, _ := ParseCombo("Ctrl+c")
	_ = r.BindNamed(combo, "quit")
	ev := tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	a = r.Resolve(ev)
	if a.Kind != ActionSendToPty {
		t.Fatalf("Resolve during passthrough = %+v, want SendToPty", a)
	}

	exit := r.Resolve(enter)
	if exit.Kind != ActionTogglePassthrough || r.Passthrough() {
		t.Fatalf("second Ctrl+\\ did not exit passthrough mode")
	}
}

func TestLoadConfigRejectsInvalidCombo(t *testing.T) {
	r := NewResolver()
	err := r.LoadConfig(map[string]string{"quit": "Cmd+Q"}, nil)
	if err == nil {
		t.Fatalf("expected error for invalid combo string")
	}
}
