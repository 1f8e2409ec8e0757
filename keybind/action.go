package keybind

// ActionKind discriminates an Action's variant (spec.md §4.8's Action enum).
type ActionKind int

const (
	ActionSendToPty ActionKind = iota
	ActionNewTab
	ActionCloseTab
	ActionNextTab
	ActionPrevTab
	ActionSplitH
	ActionSplitV
	ActionCopy
	ActionPaste
	ActionSearch
	ActionClear
	ActionQuit
	ActionExecuteScript
	ActionTogglePassthrough
	ActionNoop
)

// Action is the resolved result of a keybinding lookup.
type Action struct {
	Kind     ActionKind
	Bytes    []byte // ActionSendToPty
	ScriptID string // ActionExecuteScript: the custom_keybindings combo string
}

func SendToPty(b []byte) Action        { return Action{Kind: ActionSendToPty, Bytes: b} }
func ExecuteScript(id string) Action   { return Action{Kind: ActionExecuteScript, ScriptID: id} }

var (
	NewTab             = Action{Kind: ActionNewTab}
	CloseTab           = Action{Kind: ActionCloseTab}
	NextTab            = Action{Kind: ActionNextTab}
	PrevTab            = Action{Kind: ActionPrevTab}
	SplitH             = Action{Kind: ActionSplitH}
	SplitV             = Action{Kind: ActionSplitV}
	Copy               = Action{Kind: ActionCopy}
	Paste              = Action{Kind: ActionPaste}
	Search             = Action{Kind: ActionSearch}
	Clear              = Action{Kind: ActionClear}
	Quit               = Action{Kind: ActionQuit}
	TogglePassthrough  = Action{Kind: ActionTogglePassthrough}
	Noop               = Action{Kind: ActionNoop}
)

// namedActions maps spec.md §4.8 config-facing action names to their
// non-PTY, non-script Action values, for config's keybindings table
// (named-action -> key combination strings).
var namedActions = map[string]Action{
	"new_tab":      NewTab,
	"close_tab":    CloseTab,
	"next_tab":     NextTab,
	"prev_tab":     PrevTab,
	"split_h":      SplitH,
	"split_v":      SplitV,
	"copy":         Copy,
	"paste":        Paste,
	"search":       Search,
	"clear":        Clear,
	"quit":         Quit,
	"passthrough":  TogglePassthrough,
}
