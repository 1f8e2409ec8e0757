// Package ansi turns a byte stream from a pty into a sequence of Events:
// text spans carrying a resolved style, line breaks, bell, title changes and
// shell-integration marks. Grounded on the teacher's terminal.go
// (ansicode.NewDecoder(handler) / decoder.Write) and handler.go (one Go
// method per VT action). Only the subset of the ansicode.Handler interface
// spec.md §4.3 requires does real work; everything else is a no-op, matching
// spec.md's Non-goal that this is not a full VT220/VT500 emulator.
package ansi

import (
	"strings"

	"github.com/danielgatis/go-ansicode"
	"github.com/quillterm/quillterm/color"
)

// forceCommitThreshold bounds how much text a single span may accumulate
// before Parser force-flushes and reports a warning, per spec.md §4.7's
// backpressure note for pathological output with no line breaks.
const forceCommitThreshold = 1 << 20 // 1 MiB

// Parser incrementally decodes a byte stream into Events. It is not safe for
// concurrent use; the owning Session/loop feeds it from a single goroutine.
type Parser struct {
	decoder *ansicode.Decoder
	handler *decodeHandler

	events []Event

	pending          strings.Builder
	pendingStyle     color.Style
	pendingHyperlink string

	template         color.Style
	currentHyperlink string

	onWarn func(string)
}

// NewParser creates a Parser. onWarn, if non-nil, is called with a
// human-readable message when the force-commit threshold is hit; it may be
// nil to discard such warnings.
func NewParser(onWarn func(string)) *Parser {
	p := &Parser{onWarn: onWarn}
	p.pending.Grow(256)
	p.handler = &decodeHandler{p: p}
	p.decoder = ansicode.NewDecoder(p.handler)
	return p
}

// Feed decodes data, synchronously invoking decodeHandler methods, and
// returns the Events produced as a result. The returned slice is only valid
// until the next call to Feed.
func (p *Parser) Feed(data []byte) []Event {
	p.events = p.events[:0]
	_, _ = p.decoder.Write(data)
	p.flushPending()
	return p.events
}

// emit appends an event directly (line break, bell, title, shell mark); span
// events always go through flushPending first so ordering is preserved.
func (p *Parser) emit(e Event) {
	p.flushPending()
	p.events = append(p.events, e)
}

// input accumulates one decoded rune into the pending span, flushing first
// if the active style or hyperlink changed, or if the pending buffer has
// grown past the force-commit threshold.
func (p *Parser) input(r rune) {
	if p.pending.Len() > 0 && (!p.pendingStyle.Equal(p.template) || p.pendingHyperlink != p.currentHyperlink) {
		p.flushPending()
	}
	if p.pending.Len() == 0 {
		p.pendingStyle = p.template
		p.pendingHyperlink = p.currentHyperlink
	}
	p.pending.WriteRune(r)
	if p.pending.Len() >= forceCommitThreshold {
		if p.onWarn != nil {
			p.onWarn("ansi: force-committing span after exceeding 1MiB with no line break")
		}
		p.flushPending()
	}
}

func (p *Parser) flushPending() {
	if p.pending.Len() == 0 {
		return
	}
	p.events = append(p.events, Event{
		Kind:      EventSpan,
		Text:      p.pending.String(),
		Style:     p.pendingStyle,
		Hyperlink: p.pendingHyperlink,
	})
	p.pending.Reset()
}
