package ansi

import "github.com/quillterm/quillterm/color"

// EventKind discriminates the payload carried by an Event.
type EventKind int

const (
	EventSpan EventKind = iota
	EventLineBreak
	EventCarriageReturn
	EventBackspace
	EventBell
	EventClearScreen
	EventTitleChange
	EventTitlePush
	EventTitlePop
	EventShellMark
)

// ShellMark identifies which OSC 133 shell-integration sub-code produced an
// EventShellMark (spec.md §4.3's A/B/C/D marks).
type ShellMark int

const (
	MarkPromptBegin ShellMark = iota
	MarkInputBegin
	MarkCommandStart
	MarkCommandEnd
)

// Event is one decoded terminal action, produced incrementally by Parser.Feed
// as bytes arrive from the pty. Exactly the fields relevant to Kind are set;
// the rest are zero.
type Event struct {
	Kind EventKind

	// EventSpan
	Text      string
	Style     color.Style
	Hyperlink string

	// EventTitleChange
	Title string

	// EventShellMark
	Mark     ShellMark
	ExitCode int // only meaningful for MarkCommandEnd; -1 otherwise
}
