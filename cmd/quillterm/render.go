package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/quillterm/quillterm/color"
	"github.com/quillterm/quillterm/loop"
)

// textSink is a minimal RenderSink that redraws the active session's
// viewport directly to a terminal file descriptor using raw ANSI escapes
// (clear screen, move cursor home, SGR 24-bit color per span), grounded on
// h2's overlay.go RenderScreen (clear + repaint each tick) — but far
// simpler since this is a thin reference sink, not a full UI.
type textSink struct {
	w io.Writer
}

func newTextSink(w io.Writer) *textSink {
	return &textSink{w: w}
}

func (s *textSink) Render(f loop.Frame) error {
	sf, ok := f.Sessions[f.Active]
	if !ok {
		return nil
	}
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for _, line := range sf.Lines {
		for _, span := range line.Spans {
			writeSGR(&b, span.Style)
			b.WriteString(span.Text)
		}
		b.WriteString("\x1b[0m\r\n")
	}
	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *textSink) Flush() error {
	_, err := io.WriteString(s.w, "\x1b[0m")
	return err
}

func writeSGR(b *strings.Builder, st color.Style) {
	resolved := st.Resolve(color.DefaultDark())
	fmt.Fprintf(b, "\x1b[38;2;%d;%d;%dm", resolved.Fg.R, resolved.Fg.G, resolved.Fg.B)
	fmt.Fprintf(b, "\x1b[48;2;%d;%d;%dm", resolved.Bg.R, resolved.Bg.G, resolved.Bg.B)
}

var _ loop.RenderSink = (*textSink)(nil)
