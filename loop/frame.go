package loop

import (
	"github.com/quillterm/quillterm/grid"
	"github.com/quillterm/quillterm/hooks"
	"github.com/quillterm/quillterm/session"
)

// SessionFrame is one session's contribution to a render tick: the
// viewport-sized line view (with any pending local-echo overlay already
// merged in), the widgets custom_widgets[i] scripts produced this tick, and
// enough session state for a renderer sink to draw a status line.
type SessionFrame struct {
	Lines        []grid.Line
	Widgets      []hooks.Widget
	CommandState session.CommandState
	CommandText  string
	Passthrough  bool
}

// Frame is everything a render tick hands to the RenderSink: one
// SessionFrame per currently registered session, keyed by session ID
// (spec.md §4.7's "assemble a frame and hand it to the renderer sink").
type Frame struct {
	Sessions map[string]SessionFrame
	Active   string
}

// RenderSink is the external collaborator that turns a Frame into pixels or
// terminal cells (spec.md §6 treats the actual display as out of scope).
// Grounded on the teacher's providers.go interface+Noop-default pattern.
type RenderSink interface {
	Render(Frame) error
	Flush() error
}

// NoopRenderSink discards every frame; useful for tests and headless runs.
type NoopRenderSink struct{}

func (NoopRenderSink) Render(Frame) error { return nil }
func (NoopRenderSink) Flush() error       { return nil }

var _ RenderSink = NoopRenderSink{}
