package hooks

// Providers mirror the teacher's providers.go (BellProvider, TitleProvider,
// ClipboardProvider, RecordingProvider, all with Noop* defaults): a small
// interface plus a safe no-op implementation. The event loop calls
// Executor.Bell and Executor.Title on bell and title events, alongside the
// on_bell/on_title_change hooks. Executor.Clipboard is not called by the
// loop: Copy/Paste actions go to the host's loop.ActionHandler.

// BellProvider reacts to a terminal bell (0x07).
type BellProvider interface {
	Ring()
}

// NoopBell ignores bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// TitleProvider reacts to window-title changes, including the
// supplemental push/pop title stack (SPEC_FULL.md §3).
type TitleProvider interface {
	SetTitle(title string)
	PushTitle()
	PopTitle()
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(string) {}
func (NoopTitle) PushTitle()      {}
func (NoopTitle) PopTitle()       {}

// ClipboardProvider is the external collaborator behind the Copy/Paste
// keybinding actions (spec.md §5: "accessed only via Copy/Paste actions,
// synchronous, failure tolerated"). The core never implements a concrete
// clipboard backend — only this interface and its no-op default.
type ClipboardProvider interface {
	Read() (string, error)
	Write(text string) error
}

// NoopClipboard fails softly: reads return "", writes are discarded, no
// error — matching spec.md §7's ClipboardError disposition ("log;
// user-visible transient message", never fatal).
type NoopClipboard struct{}

func (NoopClipboard) Read() (string, error)  { return "", nil }
func (NoopClipboard) Write(string) error     { return nil }

var (
	_ BellProvider      = NoopBell{}
	_ TitleProvider     = NoopTitle{}
	_ ClipboardProvider = NoopClipboard{}
)
