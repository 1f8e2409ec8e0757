// Package loop implements the single-threaded cooperative scheduler that
// drives a running quillterm: draining keyboard input, pumping pty output
// through the parser and into the grid, running the hook executor's output
// filters and widgets, and producing render frames at a fixed tick.
// Grounded on thicc's internal/terminal/panel.go (scheduleRedraw's
// throttled-timer pattern) and h2's internal/session/session.go
// (a select-driven lifecycleLoop multiplexing child I/O, ticks and
// shutdown) — spec.md §4.7's scheduling model is exactly what both already
// do with channels and time.Timer, so no new third-party dependency is
// introduced here.
package loop

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/quillterm/quillterm/ansi"
	"github.com/quillterm/quillterm/color"
	"github.com/quillterm/quillterm/grid"
	"github.com/quillterm/quillterm/hooks"
	"github.com/quillterm/quillterm/keybind"
	"github.com/quillterm/quillterm/localecho"
)

// maxInputPerTick bounds how many queued input events one iteration drains
// (spec.md §4.7: "drain up to N input events (N=32)").
const maxInputPerTick = 32

// defaultRenderInterval is the render tick's default period (spec.md §4.7:
// "60 Hz (16.67 ms)").
const defaultRenderInterval = 16667 * time.Microsecond

// shutdownWait records the bound on waiting for a session's child to exit
// during shutdown (spec.md §4.7: "bounded 200 ms wait"). The wait itself is
// applied inside session.Session.Close, which does not read this constant.
const shutdownWait = 200 * time.Millisecond

// ActionHandler is invoked for resolved Actions the loop itself does not
// know how to carry out (tab/pane management, copy/paste, search, quit) —
// anything beyond SendToPty, ExecuteScript and TogglePassthrough, which the
// loop handles internally. The host application supplies this to implement
// its own UI chrome.
type ActionHandler func(sessionID string, action keybind.Action)

// Loop is the event-loop scheduler for one or more Sessions sharing a
// keybinding resolver and hook executor (spec.md §4.7, §5). Not safe for
// concurrent use beyond PostInput and Stop, which may be called from
// another goroutine (e.g. a UI event thread) — everything else runs
// exclusively inside Run.
type Loop struct {
	resolver *keybind.Resolver
	executor *hooks.Executor
	sink     RenderSink
	logger   *slog.Logger

	renderInterval time.Duration

	inputCh chan *tcell.EventKey
	stopCh  chan struct{}
	stopped sync.Once

	sessions []*sessionState
	active   string

	onAction  ActionHandler
	startedAt time.Time
}

// New creates a Loop. sink, logger and onAction may be nil: sink defaults
// to NoopRenderSink{}, logger to slog.Default(), onAction to a no-op.
func New(resolver *keybind.Resolver, executor *hooks.Executor, sink RenderSink, logger *slog.Logger, onAction ActionHandler) *Loop {
	if sink == nil {
		sink = NoopRenderSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onAction == nil {
		onAction = func(string, keybind.Action) {}
	}
	return &Loop{
		resolver:       resolver,
		executor:       executor,
		sink:           sink,
		logger:         logger,
		renderInterval: defaultRenderInterval,
		inputCh:        make(chan *tcell.EventKey, 256),
		stopCh:         make(chan struct{}),
		onAction:       onAction,
	}
}

// SetRenderInterval overrides the default 60Hz render tick (spec.md §4.7:
// "configurable"). Must be called before Run.
func (l *Loop) SetRenderInterval(d time.Duration) {
	if d > 0 {
		l.renderInterval = d
	}
}

// AddSession registers a session with the loop, allocating its parser,
// grid, render cache and local-echo buffer. The first session added
// becomes active.
func (l *Loop) AddSession(id string, sess sessionLike, scrollbackLines, rows, cols int, echoMode localecho.Mode) {
	// sessionLike is satisfied by *session.Session; accepting the narrower
	// interface here lets callers substitute a fake in tests.
	st := newSessionState(id, sess, scrollbackLines, rows, cols, echoMode, func(msg string) {
		l.logger.Warn("ansi parser", "session", id, "message", msg)
	})
	l.sessions = append(l.sessions, st)
	if l.active == "" {
		l.active = id
	}
}

// RemoveSession closes and unregisters a session. If it was the active
// session, active becomes "" (the host should call SetActive next).
func (l *Loop) RemoveSession(id string) {
	for i, st := range l.sessions {
		if st.id == id {
			_ = st.sess.Close()
			l.sessions = append(l.sessions[:i], l.sessions[i+1:]...)
			break
		}
	}
	if l.active == id {
		l.active = ""
	}
}

// SetActive changes which registered session receives drained input
// events.
func (l *Loop) SetActive(id string) {
	l.active = id
}

// PostInput enqueues a key event for the next iteration's input drain. Safe
// to call from another goroutine (e.g. a terminal UI's event reader). If
// the queue is full the event is dropped and logged, rather than blocking
// the caller (spec.md §4.7 never allows input delivery to stall the loop).
func (l *Loop) PostInput(ev *tcell.EventKey) {
	select {
	case l.inputCh <- ev:
	default:
		l.logger.Warn("loop: input queue full, dropping key event")
	}
}

// Stop requests the loop exit at the start of its next iteration (e.g. a
// window-close event from the host UI). Safe to call more than once.
func (l *Loop) Stop() {
	l.stopped.Do(func() { close(l.stopCh) })
}

func (l *Loop) findSession(id string) *sessionState {
	for _, st := range l.sessions {
		if st.id == id {
			return st
		}
	}
	return nil
}

// Run drives the scheduler until ctx is cancelled, Stop is called, or a
// shutdown key combination fires on an empty input line (spec.md §4.7's
// cancellation rule). It always runs the shutdown sequence before
// returning.
func (l *Loop) Run(ctx context.Context) error {
	l.startedAt = time.Now()
	l.executor.Dispatch(hooks.OnStartup, hooks.Table{})

	ticker := time.NewTicker(l.renderInterval)
	defer ticker.Stop()

	pollTicker := time.NewTicker(5 * time.Millisecond)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case <-l.stopCh:
			l.shutdown()
			return nil
		case <-ticker.C:
			l.renderTick()
		case <-pollTicker.C:
			if l.drainInput() {
				l.shutdown()
				return nil
			}
			l.pumpSessions()
		}
	}
}

// drainInput processes up to maxInputPerTick queued key events against the
// active session, returning true if a shutdown combination fired.
func (l *Loop) drainInput() bool {
	for i := 0; i < maxInputPerTick; i++ {
		var ev *tcell.EventKey
		select {
		case ev = <-l.inputCh:
		default:
			return false
		}

		active := l.findSession(l.active)
		if active == nil {
			continue
		}

		if isShutdownCombo(ev) && active.echo.IsEmpty() {
			return true
		}

		l.dispatchKeyPress(active, ev)
		action := l.resolver.Resolve(ev)
		l.applyAction(active, action)
	}
	return false
}

func isShutdownCombo(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyCtrlD
}

func (l *Loop) dispatchKeyPress(st *sessionState, ev *tcell.EventKey) {
	l.executor.Dispatch(hooks.OnKeyPress, hooks.Table{
		"key":           hooks.S(tcell.KeyNames[ev.Key()]),
		"modifiers":     hooks.I(int64(ev.Modifiers())),
		"current_input": hooks.S(st.echo.Pending()),
	})
}

func (l *Loop) applyAction(st *sessionState, action keybind.Action) {
	switch action.Kind {
	case keybind.ActionSendToPty:
		l.sendToPty(st, action.Bytes)
	case keybind.ActionExecuteScript:
		l.executor.RunCustomKeybinding(action.ScriptID, hooks.Table{
			"cwd":          hooks.S(st.sess.WorkingDir()),
			"last_command": hooks.S(st.sess.CommandText()),
		})
	case keybind.ActionTogglePassthrough:
		// handled entirely inside the resolver; nothing further to do.
	case keybind.ActionClear:
		// an explicit clear empties pending local echo, then the host
		// carries out the rest of the action.
		st.echo.Clear()
		st.dirty = true
		l.onAction(st.id, action)
	case keybind.ActionNoop:
	default:
		l.onAction(st.id, action)
	}
}

// sendToPty writes bytes to the pty and keeps the local-echo buffer in
// step, following spec.md §4.8's default mapping: 0x7f is a backspace
// (buffer truncates), the Up/Down arrow sequences (history navigation) empty
// the buffer, bytes free of control characters are appended, and other
// control sequences bypass local echo entirely.
func (l *Loop) sendToPty(st *sessionState, b []byte) {
	if _, err := st.sess.WriteInput(b); err != nil {
		l.logger.Debug("loop: write to pty would block or failed", "session", st.id, "error", err)
	}
	switch {
	case len(b) == 1 && b[0] == 0x7f:
		st.echo.Backspace()
		st.dirty = true
	case string(b) == "\x1b[A" || string(b) == "\x1b[B":
		st.echo.Clear()
		st.dirty = true
	case len(b) > 0 && isPrintableUTF8(b):
		st.echo.Append(string(b))
		st.dirty = true
	}
}

func isPrintableUTF8(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

// pumpSessions drains available pty output from every registered session,
// up to the per-tick cap, feeding it through the output filter pipeline and
// the ANSI parser into each session's grid.
func (l *Loop) pumpSessions() {
	buf := make([]byte, readChunk)
	for _, st := range l.sessions {
		total := 0
		for total < perTickReadCap {
			n, ok, err := st.sess.TryReadOutput(buf)
			if err != nil {
				l.logger.Warn("loop: session io error", "session", st.id, "error", err)
				break
			}
			if !ok {
				break
			}
			l.handleOutput(st, buf[:n])
			total += n
		}
	}
}

// handleOutput runs raw pty bytes through the output filter pipeline
// (spec.md §4.6), then either re-feeds the filtered text to the ANSI parser
// (if it contains escape or other C0 control bytes such as '\n', '\r', BS or
// BEL; tab excepted) or appends it to the grid as a single plain span.
func (l *Loop) handleOutput(st *sessionState, raw []byte) {
	filtered := l.executor.RunFilterPipeline(string(raw))

	l.executor.Dispatch(hooks.OnOutput, hooks.Table{
		"bytes_len":    hooks.I(int64(len(raw))),
		"text_excerpt": hooks.S(excerpt(filtered, 256)),
	})

	if !strings.ContainsFunc(filtered, func(r rune) bool { return r < 0x20 && r != '\t' }) {
		if filtered != "" {
			st.grid.AppendToActive(grid.Span{Text: filtered, Style: color.Style{}})
			st.cache.MarkDirty()
			st.dirty = true
		}
		return
	}

	events := st.parser.Feed([]byte(filtered))
	for _, ev := range events {
		l.handleParserEvent(st, ev)
	}
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// handleParserEvent applies one decoded ansi.Event to a session's grid,
// local-echo buffer and hook dispatch table (spec.md §4.3, §4.5, §4.6).
func (l *Loop) handleParserEvent(st *sessionState, ev ansi.Event) {
	switch ev.Kind {
	case ansi.EventSpan:
		st.grid.AppendToActive(grid.Span{Text: ev.Text, Style: ev.Style, Hyperlink: ev.Hyperlink})
		st.cache.MarkDirty()
		st.echo.Reconcile(st.activeTail())
		st.dirty = true
	case ansi.EventLineBreak:
		st.grid.CommitLine()
		st.cache.MarkDirty()
		st.echo.Clear()
		st.dirty = true
	case ansi.EventCarriageReturn:
		st.grid.ResetActiveLinePosition()
		st.cache.MarkDirty()
		st.dirty = true
	case ansi.EventBackspace:
		st.grid.TruncateActive()
		st.cache.MarkDirty()
		st.dirty = true
	case ansi.EventBell:
		l.executor.Bell.Ring()
		l.executor.Dispatch(hooks.OnBell, hooks.Table{})
	case ansi.EventClearScreen:
		st.grid.ClearAll()
		st.cache.MarkDirty()
		st.dirty = true
	case ansi.EventTitleChange:
		l.executor.Title.SetTitle(ev.Title)
		l.executor.Dispatch(hooks.OnTitleChange, hooks.Table{"title": hooks.S(ev.Title)})
		st.dirty = true
	case ansi.EventTitlePush:
		l.executor.Title.PushTitle()
	case ansi.EventTitlePop:
		l.executor.Title.PopTitle()
	case ansi.EventShellMark:
		l.handleShellMark(st, ev)
	}
}

func (l *Loop) handleShellMark(st *sessionState, ev ansi.Event) {
	switch ev.Mark {
	case ansi.MarkCommandStart:
		st.sess.MarkCommandStart(st.echo.Pending())
		st.echo.Clear()
		l.executor.Dispatch(hooks.OnCommandStart, hooks.Table{
			"command": hooks.S(st.sess.CommandText()),
			"cwd":     hooks.S(st.sess.WorkingDir()),
		})
	case ansi.MarkCommandEnd:
		dur := st.sess.MarkCommandEnd(ev.ExitCode)
		l.executor.Dispatch(hooks.OnCommandEnd, hooks.Table{
			"command":     hooks.S(st.sess.CommandText()),
			"exit_code":   hooks.I(int64(ev.ExitCode)),
			"duration_ms": hooks.I(dur.Milliseconds()),
		})
		if ev.ExitCode != 0 && st.sess.ShouldAutoRespawn() {
			// OSC 133;D does not itself mean the child process exited, so
			// nothing is done here. The loop has no respawn path: a later
			// pty EOF is logged by pumpSessions and Respawn is not called.
		}
	}
}

// renderTick assembles and delivers one Frame if any session is dirty
// (spec.md §4.7: "A frame is produced at most once per tick ... the loop is
// allowed to skip frames when no session is dirty").
func (l *Loop) renderTick() {
	anyDirty := false
	for _, st := range l.sessions {
		if st.dirty {
			anyDirty = true
			break
		}
	}
	if !anyDirty {
		return
	}

	frame := Frame{Sessions: make(map[string]SessionFrame, len(l.sessions)), Active: l.active}
	for _, st := range l.sessions {
		frame.Sessions[st.id] = SessionFrame{
			Lines:        st.renderLines(),
			Widgets:      l.executor.RunWidgets(hooks.Table{"session": hooks.S(st.id)}),
			CommandState: st.sess.State(),
			CommandText:  st.sess.CommandText(),
			Passthrough:  l.resolver.Passthrough(),
		}
		st.dirty = false
	}
	if err := l.sink.Render(frame); err != nil {
		l.logger.Warn("loop: render sink error", "error", err)
	}
}

// shutdown runs spec.md §4.7's teardown sequence: dispatch on_shutdown,
// close every session within a bounded wait each, flush the renderer.
func (l *Loop) shutdown() {
	l.executor.Dispatch(hooks.OnShutdown, hooks.Table{
		"session_count":   hooks.I(int64(len(l.sessions))),
		"uptime_seconds":  hooks.F(time.Since(l.startedAt).Seconds()),
	})
	for _, st := range l.sessions {
		// Close already bounds its own wait for child exit (session.Session's
		// 200ms rule); shutdownWait documents that same bound at this layer.
		_ = st.sess.Close()
	}
	if err := l.sink.Flush(); err != nil {
		l.logger.Warn("loop: render sink flush error", "error", err)
	}
}
