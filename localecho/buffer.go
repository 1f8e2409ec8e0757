// Package localecho implements the per-session keystroke buffer that
// displays typed characters before the shell confirms echoing them
// (spec.md §4.5). No example repo in the pack implements local echo — they
// all rely on the pty/shell for it — so this is built directly from
// spec.md's protocol. The buffer stores runes, so backspace removes one
// code point; the teacher's uniwidth (width.go) is used only by Width.
package localecho

import (
	"strings"

	"github.com/unilibs/uniwidth"
)

// Mode selects how aggressively local echo displays keystrokes ahead of
// shell confirmation (spec.md §4.5).
type Mode int

const (
	// Heuristic reconciles against shell output as it arrives (default).
	Heuristic Mode = iota
	// AlwaysLocal never waits for shell confirmation to clear the buffer
	// (only explicit events — LineBreak, CommandStart, history nav, clear
	// — empty it).
	AlwaysLocal
	// AlwaysRemote never displays local echo; Pending always reports "".
	AlwaysRemote
)

// Buffer holds keystrokes sent to the pty but not yet confirmed echoed by
// the shell. Owned by exactly one Session and mutated only from the
// event-loop thread — no internal locking.
type Buffer struct {
	mode Mode
	buf  []rune
}

// New creates a Buffer in the given mode.
func New(mode Mode) *Buffer {
	return &Buffer{mode: mode}
}

// SetMode changes the reconciliation mode; does not clear the buffer.
func (b *Buffer) SetMode(m Mode) { b.mode = m }

// Append adds decoded text to the buffer, as keystrokes that produced pty
// bytes. Call sites are responsible for also writing the same bytes to the
// pty (spec.md §4.5: "appended to the buffer AND written to the pty").
func (b *Buffer) Append(text string) {
	if b.mode == AlwaysRemote {
		return
	}
	b.buf = append(b.buf, []rune(text)...)
}

// Backspace removes the last code point from the buffer. No-op if empty.
func (b *Buffer) Backspace() {
	if len(b.buf) == 0 {
		return
	}
	b.buf = b.buf[:len(b.buf)-1]
}

// Clear empties the buffer unconditionally — used on history navigation,
// explicit clear, LineBreak, or CommandStart (spec.md §4.5).
func (b *Buffer) Clear() {
	b.buf = b.buf[:0]
}

// IsEmpty reports whether the buffer currently holds any pending text.
func (b *Buffer) IsEmpty() bool {
	return len(b.buf) == 0
}

// Pending returns the buffer's current decoded content.
func (b *Buffer) Pending() string {
	if len(b.buf) == 0 {
		return ""
	}
	return string(b.buf)
}

// Width returns the display width (uniwidth-aware, accounting for
// double-width runes) of the pending content, used by a renderer to size a
// synthetic span.
func (b *Buffer) Width() int {
	w := 0
	for _, r := range b.buf {
		w += uniwidth.RuneWidth(r)
	}
	return w
}

// Reconcile inspects activeLineTail — the text of the active grid line
// after the most recent parser flush — and clears the buffer once the
// shell has echoed it back (spec.md §4.5: "If that tail ends with the
// local-echo buffer's content, the buffer is cleared"). Mode AlwaysLocal
// never reconciles against shell output; only explicit Clear calls empty
// it in that mode.
func (b *Buffer) Reconcile(activeLineTail string) {
	if b.mode == AlwaysLocal || len(b.buf) == 0 {
		return
	}
	pending := b.Pending()
	if strings.HasSuffix(activeLineTail, pending) {
		b.Clear()
	}
}

// Render returns the text a render sink should append as a synthetic span
// to the active line, or "" if nothing should be appended — either the
// buffer is empty, or activeLineTail already ends with its content (the
// shell was faster than local echo), per spec.md §4.5's render rule.
func (b *Buffer) Render(activeLineTail string) string {
	if b.mode == AlwaysRemote || len(b.buf) == 0 {
		return ""
	}
	pending := b.Pending()
	if strings.HasSuffix(activeLineTail, pending) {
		return ""
	}
	return pending
}
