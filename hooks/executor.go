// Package hooks implements the sandboxed scripting surface spec.md §4.6
// describes: lifecycle hooks, an ordered output-filter pipeline, custom
// keybinding scripts and widget producers, all running synchronously on the
// event-loop thread. Grounded on thicc's go.mod dependency on
// github.com/yuin/gopher-lua and layeh.com/gopher-luar (exercised only in a
// crash-reporting fragment there); this package is the dependency's
// fully-wired home per SPEC_FULL.md §2.
package hooks

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	luar "layeh.com/gopher-luar"
)

// Point names a lifecycle hook entry point from spec.md §4.6's table.
type Point string

const (
	OnStartup      Point = "on_startup"
	OnShutdown     Point = "on_shutdown"
	OnKeyPress     Point = "on_key_press"
	OnCommandStart Point = "on_command_start"
	OnCommandEnd   Point = "on_command_end"
	OnOutput       Point = "on_output"
	OnBell         Point = "on_bell"
	OnTitleChange  Point = "on_title_change"
)

// softBudget is the per-invocation warning threshold (spec.md §4.6, §5:
// "10ms, warning only").
const softBudget = 10 * time.Millisecond

// ScriptError wraps a Lua runtime/compile error. Per spec.md §7 it is
// always logged and skipped, never fatal to the session.
type ScriptError struct {
	Where string
	Err   error
}

func (e *ScriptError) Error() string { return fmt.Sprintf("hooks: %s: %v", e.Where, e.Err) }
func (e *ScriptError) Unwrap() error { return e.Err }

// Widget is one custom_widgets[i] render-tick result (spec.md §4.6's
// custom_widgets row): an overlay descriptor for the renderer sink.
type Widget struct {
	X, Y, Width, Height int
	Content             string
	StyleName            string
}

// Executor runs user-provided Lua scripts for hook points, output filters,
// custom keybindings and widget producers. It holds no locks across a
// script call (spec.md §4.6) and is re-entrancy safe: a script that
// triggers a nested Dispatch during its own execution has that nested call
// silently suppressed.
type Executor struct {
	mu     sync.Mutex
	L      *lua.LState
	logger *slog.Logger

	hooks             map[Point]*lua.LFunction
	customKeybindings map[string]*lua.LFunction
	outputFilters     []*lua.LFunction
	customWidgets     []*lua.LFunction

	inHook bool // reentrancy guard (single-threaded event loop, no atomic needed)

	Bell      BellProvider
	Title     TitleProvider
	Clipboard ClipboardProvider
}

// NewExecutor creates an Executor with a fresh Lua VM. logger defaults to
// slog.Default() when nil (SPEC_FULL.md §1's ambient logging convention).
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		L:                 lua.NewState(),
		logger:            logger,
		hooks:             make(map[Point]*lua.LFunction),
		customKeybindings: make(map[string]*lua.LFunction),
		Bell:              NoopBell{},
		Title:             NoopTitle{},
		Clipboard:         NoopClipboard{},
	}
	// Expose a minimal built-in logging function to scripts, via gopher-luar
	// rather than hand-written reflection — the Go<->Lua binding concern
	// SPEC_FULL.md §2 names for this dependency.
	e.L.SetGlobal("log", luar.New(e.L, func(msg string) {
		e.logger.Info("hook script", "message", msg)
	}))
	return e
}

// Close releases the Lua VM's resources.
func (e *Executor) Close() {
	e.L.Close()
}

func (e *Executor) compile(where, source string) (*lua.LFunction, error) {
	fn, err := e.L.LoadString(source)
	if err != nil {
		e.logger.Warn("hook script failed to compile", "where", where, "error", err)
		return nil, &ScriptError{Where: where, Err: err}
	}
	return fn, nil
}

// LoadHook compiles source and registers it for the given lifecycle Point.
func (e *Executor) LoadHook(point Point, source string) error {
	fn, err := e.compile(string(point), source)
	if err != nil {
		return err
	}
	e.hooks[point] = fn
	return nil
}

// LoadOutputFilter compiles source and appends it to the ordered filter
// pipeline (spec.md §4.6: "Filters run in declared order").
func (e *Executor) LoadOutputFilter(source string) error {
	fn, err := e.compile("output_filter", source)
	if err != nil {
		return err
	}
	e.outputFilters = append(e.outputFilters, fn)
	return nil
}

// LoadCustomKeybinding compiles source and registers it for key combo
// string key (e.g. "Ctrl+Shift+P").
func (e *Executor) LoadCustomKeybinding(key, source string) error {
	fn, err := e.compile("custom_keybinding["+key+"]", source)
	if err != nil {
		return err
	}
	e.customKeybindings[key] = fn
	return nil
}

// LoadCustomWidget compiles source and appends it to the widget list.
func (e *Executor) LoadCustomWidget(source string) error {
	fn, err := e.compile("custom_widget", source)
	if err != nil {
		return err
	}
	e.customWidgets = append(e.customWidgets, fn)
	return nil
}

// HasCustomKeybinding reports whether a script is registered for key.
func (e *Executor) HasCustomKeybinding(key string) bool {
	_, ok := e.customKeybindings[key]
	return ok
}

// enter acquires the reentrancy guard; returns false if a hook call is
// already in progress (in which case the caller must skip dispatch).
func (e *Executor) enter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inHook {
		return false
	}
	e.inHook = true
	return true
}

func (e *Executor) leave() {
	e.mu.Lock()
	e.inHook = false
	e.mu.Unlock()
}

func (e *Executor) timeCall(where string, call func() error) {
	start := time.Now()
	err := call()
	if elapsed := time.Since(start); elapsed > softBudget {
		e.logger.Warn("hook script exceeded soft time budget", "where", where, "elapsed", elapsed)
	}
	if err != nil {
		e.logger.Warn("hook script error", "where", where, "error", err)
	}
}

// Dispatch runs the hook registered at point, if any, passing ctx as its
// single argument table. A missing hook, a re-entrant call, or a script
// error are all silently tolerated (spec.md §4.6, §7).
func (e *Executor) Dispatch(point Point, ctx Table) {
	fn, ok := e.hooks[point]
	if !ok {
		return
	}
	if !e.enter() {
		return
	}
	defer e.leave()

	e.timeCall(string(point), func() error {
		e.L.Push(fn)
		e.L.Push(toLuaTable(e.L, ctx))
		return e.L.PCall(1, 0, nil)
	})
}

// RunOutputFilter runs filter index i with input as its single string
// argument. On any error, or a non-string return, the input passes through
// unchanged (spec.md §4.6: "a failing filter is skipped").
func (e *Executor) RunOutputFilter(i int, input string) string {
	if i < 0 || i >= len(e.outputFilters) {
		return input
	}
	if !e.enter() {
		return input
	}
	defer e.leave()

	out := input
	e.timeCall("output_filter", func() error {
		e.L.Push(e.outputFilters[i])
		e.L.Push(lua.LString(input))
		if err := e.L.PCall(1, 1, nil); err != nil {
			return err
		}
		ret := e.L.Get(-1)
		e.L.Pop(1)
		if s, ok := ret.(lua.LString); ok {
			out = string(s)
		}
		return nil
	})
	return out
}

// RunFilterPipeline threads text through every loaded output filter in
// order, filter i's output becoming filter i+1's input.
func (e *Executor) RunFilterPipeline(text string) string {
	for i := range e.outputFilters {
		text = e.RunOutputFilter(i, text)
	}
	return text
}

// RunCustomKeybinding invokes the script bound to key, if any, returning
// true if a binding was found (regardless of script success, and also when
// the call is suppressed because another hook call is in progress).
func (e *Executor) RunCustomKeybinding(key string, ctx Table) bool {
	fn, ok := e.customKeybindings[key]
	if !ok {
		return false
	}
	if !e.enter() {
		return true
	}
	defer e.leave()

	e.timeCall("custom_keybinding["+key+"]", func() error {
		e.L.Push(fn)
		e.L.Push(toLuaTable(e.L, ctx))
		return e.L.PCall(1, 0, nil)
	})
	return true
}

// RunWidgets invokes every custom_widgets[i] producer for the current
// render tick and collects the Widget descriptors they return. A script
// that errors, or returns a malformed table, simply contributes no widget
// (spec.md §7: script errors never abort the render tick).
func (e *Executor) RunWidgets(ctx Table) []Widget {
	if len(e.customWidgets) == 0 {
		return nil
	}
	if !e.enter() {
		return nil
	}
	defer e.leave()

	var widgets []Widget
	for _, fn := range e.customWidgets {
		e.timeCall("custom_widget", func() error {
			e.L.Push(fn)
			e.L.Push(toLuaTable(e.L, ctx))
			if err := e.L.PCall(1, 1, nil); err != nil {
				return err
			}
			ret := e.L.Get(-1)
			e.L.Pop(1)
			v, ok := fromLua(ret)
			if !ok || v.Kind != KindTable {
				return nil
			}
			widgets = append(widgets, widgetFromTable(v.Table))
			return nil
		})
	}
	return widgets
}

func widgetFromTable(t Table) Widget {
	w := Widget{}
	if v, ok := t["x"]; ok {
		n, _ := v.AsInt()
		w.X = int(n)
	}
	if v, ok := t["y"]; ok {
		n, _ := v.AsInt()
		w.Y = int(n)
	}
	if v, ok := t["width"]; ok {
		n, _ := v.AsInt()
		w.Width = int(n)
	}
	if v, ok := t["height"]; ok {
		n, _ := v.AsInt()
		w.Height = int(n)
	}
	if v, ok := t["content"]; ok {
		s, _ := v.AsString()
		w.Content = s
	}
	if v, ok := t["style"]; ok {
		s, _ := v.AsString()
		w.StyleName = s
	}
	return w
}
