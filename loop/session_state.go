package loop

import (
	"time"

	"github.com/quillterm/quillterm/ansi"
	"github.com/quillterm/quillterm/grid"
	"github.com/quillterm/quillterm/localecho"
	"github.com/quillterm/quillterm/session"
)

// readChunk is the per-tick pty read buffer size (spec.md §4.1's 4 KiB
// suggestion for TryReadOutput's caller-supplied buffer).
const readChunk = 4096

// perTickReadCap bounds total bytes drained from one session per loop
// iteration (spec.md §4.7: "a soft cap of 64 KiB per tick").
const perTickReadCap = 64 * 1024

// sessionLike is the subset of *session.Session the loop depends on,
// narrowed to an interface so tests can drive the scheduler against a fake
// without spawning a real pty/shell.
type sessionLike interface {
	WriteInput(b []byte) (int, error)
	TryReadOutput(buf []byte) (int, bool, error)
	Resize(rows, cols uint16) error
	Close() error
	WorkingDir() string
	CommandText() string
	State() session.CommandState
	MarkCommandStart(command string)
	MarkCommandEnd(exitCode int) time.Duration
	ShouldAutoRespawn() bool
	Respawn() error
}

// sessionState is everything the loop tracks for one registered session:
// the pty session itself plus its parser, grid, local-echo buffer and
// render cache, all owned exclusively by the event-loop thread (spec.md §5
// — no locking between these fields is required or provided).
type sessionState struct {
	id   string
	sess sessionLike

	parser *ansi.Parser
	grid   *grid.Grid
	cache  *grid.Cache
	echo   *localecho.Buffer

	rows, cols int
	dirty      bool // set on any renderable mutation, cleared after a render tick
}

func newSessionState(id string, sess sessionLike, scrollbackLines, rows, cols int, echoMode localecho.Mode, onParseWarn func(string)) *sessionState {
	return &sessionState{
		id:     id,
		sess:   sess,
		parser: ansi.NewParser(onParseWarn),
		grid:   grid.New(scrollbackLines),
		cache:  grid.NewCache(rows),
		echo:   localecho.New(echoMode),
		rows:   rows,
		cols:   cols,
	}
}

func (s *sessionState) resize(rows, cols int) error {
	s.rows, s.cols = rows, cols
	s.cache.Resize(rows)
	return s.sess.Resize(uint16(rows), uint16(cols))
}

// activeTail returns the active grid line's text, used by the local-echo
// buffer to decide whether the shell has caught up (spec.md §4.5).
func (s *sessionState) activeTail() string {
	return s.grid.ActiveLine().Text()
}

// renderLines builds this tick's viewport view, merging any still-pending
// local-echo text onto the last line as a synthetic span (spec.md §4.5's
// render rule).
func (s *sessionState) renderLines() []grid.Line {
	lines := s.cache.Render(s.grid)
	echoText := s.echo.Render(s.activeTail())
	if echoText == "" {
		return lines
	}
	out := append([]grid.Line(nil), lines...)
	if len(out) == 0 {
		out = append(out, grid.Line{})
	}
	last := out[len(out)-1]
	last.Spans = append(append([]grid.Span(nil), last.Spans...), grid.Span{Text: echoText})
	out[len(out)-1] = last
	return out
}
