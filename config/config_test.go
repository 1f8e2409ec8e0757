package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPassesValidation(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal.ScrollbackLines != 10000 {
		t.Fatalf("ScrollbackLines = %d, want default 10000", cfg.Terminal.ScrollbackLines)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quillterm.yaml")
	body := `
shell:
  default_shell: /bin/bash
terminal:
  scrollback_lines: 5000
  cursor_style: bar
theme:
  foreground: "#ffffff"
  background: "#000000"
keybindings:
  quit: Ctrl+q
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shell.DefaultShell != "/bin/bash" {
		t.Fatalf("DefaultShell = %q", cfg.Shell.DefaultShell)
	}
	if cfg.Terminal.ScrollbackLines != 5000 || cfg.Terminal.CursorStyle != "bar" {
		t.Fatalf("Terminal = %+v", cfg.Terminal)
	}
	if cfg.Keybindings["quit"] != "Ctrl+q" {
		t.Fatalf("Keybindings[quit] = %q", cfg.Keybindings["quit"])
	}
}

func TestValidateRejectsZeroScrollback(t *testing.T) {
	cfg := Default()
	cfg.Terminal.ScrollbackLines = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error for scrollback_lines=0")
	}
	cerr, ok := err.(*ConfigError)
	if !ok || len(cerr.Violations) != 1 {
		t.Fatalf("err = %v, want single ConfigError violation", err)
	}
}

func TestValidateRejectsMalformedColor(t *testing.T) {
	cfg := Default()
	cfg.Theme.Foreground = "not-a-color"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for malformed theme.foreground")
	}
}

func TestValidateRejectsMalformedKeybinding(t *testing.T) {
	cfg := Default()
	cfg.Keybindings = map[string]string{"quit": "Cmd+Q"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unsupported modifier in keybindings")
	}
}

func TestValidateAggregatesMultipleViolations(t *testing.T) {
	cfg := Default()
	cfg.Terminal.ScrollbackLines = -1
	cfg.Theme.Background = "nope"
	err := cfg.Validate()
	cerr, ok := err.(*ConfigError)
	if !ok || len(cerr.Violations) != 2 {
		t.Fatalf("err = %v, want 2 aggregated violations", err)
	}
}

func TestPaletteFallsBackToDefaultDark(t *testing.T) {
	cfg := Default()
	p, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	if p.Entry(1).Hex() == "" {
		t.Fatalf("Palette entry missing")
	}
}

func TestPaletteAppliesOverrides(t *testing.T) {
	cfg := Default()
	cfg.Theme.Foreground = "#ff0000"
	cfg.Theme.NamedColors = map[string]string{"1": "#112233"}
	cfg.Theme.PaletteOverrides = map[string]string{"200": "#445566"}
	p, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	if p.Foreground().Hex() != "#ff0000" {
		t.Fatalf("Foreground = %s, want #ff0000", p.Foreground().Hex())
	}
	if p.Entry(1).Hex() != "#112233" {
		t.Fatalf("Entry(1) = %s, want #112233", p.Entry(1).Hex())
	}
	if p.Entry(200).Hex() != "#445566" {
		t.Fatalf("Entry(200) = %s, want #445566", p.Entry(200).Hex())
	}
}

func TestKeybindResolverWiresBindings(t *testing.T) {
	cfg := Default()
	cfg.Keybindings = map[string]string{"paste": "Ctrl+Shift+V"}
	r, warnings, err := cfg.KeybindResolver()
	if err != nil {
		t.Fatalf("KeybindResolver: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if r == nil {
		t.Fatalf("resolver is nil")
	}
}
