// Package config owns the frozen Configuration value spec.md §3 defines,
// plus the YAML loader and validator spec.md defers to an external
// collaborator ("config file loading ... treated as a frozen configuration
// value passed at startup"). Grounded on thicc's internal/terminal/
// settings.go (load/validate pattern) generalized to the full §3 table,
// using gopkg.in/yaml.v3 as thicc and vee both do for their own config/
// frontmatter loading.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/quillterm/quillterm/color"
	"github.com/quillterm/quillterm/keybind"
)

// ConfigError wraps one or more invariant violations found at load time
// (spec.md §7: fatal, abort with message).
type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	msg := "config: invalid configuration:"
	for _, v := range e.Violations {
		msg += "\n  - " + v
	}
	return msg
}

// ShellGroup is config's `shell` option group.
type ShellGroup struct {
	DefaultShell string            `yaml:"default_shell"`
	WorkingDir   string            `yaml:"working_dir"`
	Env          map[string]string `yaml:"env"`
}

// TerminalGroup is config's `terminal` option group.
type TerminalGroup struct {
	MaxHistory      int     `yaml:"max_history"`
	ScrollbackLines int     `yaml:"scrollback_lines"`
	CursorStyle     string  `yaml:"cursor_style"` // block | underline | bar
	FontSize        float64 `yaml:"font_size"`
}

// ThemeGroup is config's `theme` option group: default colors plus the
// 16 named + 240 indexed palette entries (spec.md §3), all as "#RRGGBB"
// literals. PaletteOverrides is keyed by decimal ANSI index ("16".."255");
// NamedColors is keyed by "0".."15".
type ThemeGroup struct {
	Foreground       string            `yaml:"foreground"`
	Background       string            `yaml:"background"`
	Cursor           string            `yaml:"cursor"`
	NamedColors      map[string]string `yaml:"named_colors"`
	PaletteOverrides map[string]string `yaml:"palette"`
}

// HooksGroup is config's `hooks` option group.
type HooksGroup struct {
	// Lifecycle maps a hook point name (spec.md §4.6's table, e.g.
	// "on_startup") to an inline Lua body. The string is compiled as Lua
	// source exactly as given; a file path is not read or resolved.
	Lifecycle         map[string]string `yaml:"lifecycle"`
	OutputFilters     []string          `yaml:"output_filters"`
	CustomKeybindings map[string]string `yaml:"custom_keybindings"`
}

// Config is the frozen, validated Configuration value spec.md §3 defines.
// Once returned by Load it is never mutated — every core component only
// ever reads it by reference (spec.md §5).
type Config struct {
	Shell       ShellGroup        `yaml:"shell"`
	Terminal    TerminalGroup     `yaml:"terminal"`
	Theme       ThemeGroup        `yaml:"theme"`
	Keybindings map[string]string `yaml:"keybindings"`
	Hooks       HooksGroup        `yaml:"hooks"`
}

// Default returns a Config populated with spec.md-compatible defaults (used
// when no file is supplied, and as the base merged under a partially
// specified file).
func Default() *Config {
	return &Config{
		Terminal: TerminalGroup{
			MaxHistory:      1000,
			ScrollbackLines: 10000,
			CursorStyle:     "block",
			FontSize:        13,
		},
	}
}

// Load reads and parses a YAML configuration file at path, merges it over
// Default(), validates it, and returns the frozen result. A missing file is
// not an error — it falls back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, &ConfigError{Violations: []string{fmt.Sprintf("reading %s: %v", path, err)}}
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Violations: []string{fmt.Sprintf("parsing %s: %v", path, err)}}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks spec.md's named invariants (scrollback_lines >= 1,
// well-formed key-combo strings per §4.8, well-formed color literals) and
// returns a ConfigError aggregating every violation found, rather than
// failing on the first one — so a user fixing their config sees every
// problem in one pass.
func (c *Config) Validate() error {
	var violations []string

	if c.Terminal.ScrollbackLines < 1 {
		violations = append(violations, fmt.Sprintf("terminal.scrollback_lines must be >= 1, got %d", c.Terminal.ScrollbackLines))
	}
	if c.Terminal.MaxHistory < 0 {
		violations = append(violations, fmt.Sprintf("terminal.max_history must be >= 0, got %d", c.Terminal.MaxHistory))
	}
	switch c.Terminal.CursorStyle {
	case "", "block", "underline", "bar":
	default:
		violations = append(violations, fmt.Sprintf("terminal.cursor_style %q must be one of block/underline/bar", c.Terminal.CursorStyle))
	}

	for _, hex := range []struct{ name, value string }{
		{"theme.foreground", c.Theme.Foreground},
		{"theme.background", c.Theme.Background},
		{"theme.cursor", c.Theme.Cursor},
	} {
		if hex.value == "" {
			continue
		}
		if _, err := color.ParseHex(hex.value); err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", hex.name, err))
		}
	}
	for idx, hex := range c.Theme.NamedColors {
		if i, err := strconv.Atoi(idx); err != nil || i < 0 || i > 15 {
			violations = append(violations, fmt.Sprintf("theme.named_colors key %q must be a decimal index 0-15", idx))
			continue
		}
		if _, err := color.ParseHex(hex); err != nil {
			violations = append(violations, fmt.Sprintf("theme.named_colors[%s]: %v", idx, err))
		}
	}
	for idx, hex := range c.Theme.PaletteOverrides {
		if i, err := strconv.Atoi(idx); err != nil || i < 16 || i > 255 {
			violations = append(violations, fmt.Sprintf("theme.palette key %q must be a decimal index 16-255", idx))
			continue
		}
		if _, err := color.ParseHex(hex); err != nil {
			violations = append(violations, fmt.Sprintf("theme.palette[%s]: %v", idx, err))
		}
	}

	for action, combo := range c.Keybindings {
		if _, err := keybind.ParseCombo(combo); err != nil {
			violations = append(violations, fmt.Sprintf("keybindings.%s: %v", action, err))
		}
	}
	for combo := range c.Hooks.CustomKeybindings {
		if _, err := keybind.ParseCombo(combo); err != nil {
			violations = append(violations, fmt.Sprintf("hooks.custom_keybindings[%s]: %v", combo, err))
		}
	}

	if len(violations) > 0 {
		return &ConfigError{Violations: violations}
	}
	return nil
}

// Palette builds a color.Palette from the theme group, falling back to
// color.DefaultDark() for any color left unspecified (spec.md §3's
// Palette invariant: every index 0-255 always resolves).
func (c *Config) Palette() (*color.Palette, error) {
	base := color.DefaultDark()
	fg, bg, cur := base.Foreground(), base.Background(), base.Cursor()
	if c.Theme.Foreground != "" {
		v, err := color.ParseHex(c.Theme.Foreground)
		if err != nil {
			return nil, err
		}
		fg = v
	}
	if c.Theme.Background != "" {
		v, err := color.ParseHex(c.Theme.Background)
		if err != nil {
			return nil, err
		}
		bg = v
	}
	if c.Theme.Cursor != "" {
		v, err := color.ParseHex(c.Theme.Cursor)
		if err != nil {
			return nil, err
		}
		cur = v
	}

	var named [16]color.Color
	for i := 0; i < 16; i++ {
		named[i] = base.Entry(i)
	}
	for idx, hex := range c.Theme.NamedColors {
		i, _ := strconv.Atoi(idx)
		if i < 0 || i > 15 {
			continue
		}
		v, err := color.ParseHex(hex)
		if err != nil {
			return nil, err
		}
		named[i] = v
	}

	overrides := make(map[int]color.Color, len(c.Theme.PaletteOverrides))
	for idx, hex := range c.Theme.PaletteOverrides {
		i, _ := strconv.Atoi(idx)
		v, err := color.ParseHex(hex)
		if err != nil {
			return nil, err
		}
		overrides[i] = v
	}

	return color.NewPalette(named, overrides, fg, bg, cur), nil
}

// KeybindResolver builds a keybind.Resolver from the Keybindings and
// CustomKeybindings groups. Returns any CollisionWarnings alongside the
// resolver (spec.md §9's non-fatal overlapping-default-binding warning).
func (c *Config) KeybindResolver() (*keybind.Resolver, []string, error) {
	r := keybind.NewResolver()
	if err := r.LoadConfig(c.Keybindings, c.Hooks.CustomKeybindings); err != nil {
		return nil, nil, err
	}
	return r, r.CollisionWarnings(), nil
}
