package ansi

import (
	imgcolor "image/color"

	"github.com/danielgatis/go-ansicode"
	qcolor "github.com/quillterm/quillterm/color"
)

// decodeHandler implements ansicode.Handler, the full VT action dispatch
// surface the decoder requires. Grounded method-for-method on the teacher's
// handler.go; only Input, LineFeed, CarriageReturn, Backspace, Bell,
// SetTerminalCharAttribute, ClearScreen, SetTitle and ShellIntegrationMark
// do real work for spec.md §4.3's recognized sequence table, plus
// SetHyperlink, PushTitle and PopTitle for the SPEC_FULL.md §3
// supplements. Every other
// method is a deliberate no-op: the teacher implements cursor-addressing,
// scrolling regions, charset switching and Kitty/Sixel graphics, none of
// which spec.md's grid (an append-only styled line sequence) represents.
type decodeHandler struct {
	p *Parser
}

func (h *decodeHandler) Input(r rune) {
	h.p.input(r)
}

func (h *decodeHandler) LineFeed() {
	h.p.emit(Event{Kind: EventLineBreak})
}

func (h *decodeHandler) CarriageReturn() {
	h.p.emit(Event{Kind: EventCarriageReturn})
}

func (h *decodeHandler) Backspace() {
	h.p.emit(Event{Kind: EventBackspace})
}

func (h *decodeHandler) Bell() {
	h.p.emit(Event{Kind: EventBell})
}

func (h *decodeHandler) ClearScreen(mode ansicode.ClearMode) {
	if mode == ansicode.ClearModeAll {
		h.p.emit(Event{Kind: EventClearScreen})
	}
}

func (h *decodeHandler) SetTitle(title string) {
	h.p.emit(Event{Kind: EventTitleChange, Title: title})
}

func (h *decodeHandler) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int) {
	var m ShellMark
	switch mark {
	case ansicode.PromptStart:
		m = MarkPromptBegin
	case ansicode.CommandStart:
		m = MarkInputBegin
	case ansicode.CommandExecuted:
		m = MarkCommandStart
	case ansicode.CommandFinished:
		m = MarkCommandEnd
	default:
		return
	}
	h.p.emit(Event{Kind: EventShellMark, Mark: m, ExitCode: exitCode})
}

// SetTerminalCharAttribute applies one SGR attribute to the running style
// template, following the same switch shape as the teacher's
// setTerminalCharAttributeInternal.
func (h *decodeHandler) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	t := &h.p.template
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		*t = qcolor.Reset()
	case ansicode.CharAttributeBold:
		*t = t.WithAttr(qcolor.AttrBold)
	case ansicode.CharAttributeDim:
		*t = t.WithAttr(qcolor.AttrDim)
	case ansicode.CharAttributeItalic:
		*t = t.WithAttr(qcolor.AttrItalic)
	case ansicode.CharAttributeUnderline:
		*t = t.WithAttr(qcolor.AttrUnderline)
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		*t = t.WithAttr(qcolor.AttrBlink)
	case ansicode.CharAttributeReverse:
		*t = t.WithAttr(qcolor.AttrReverse)
	case ansicode.CharAttributeHidden:
		*t = t.WithAttr(qcolor.AttrHidden)
	case ansicode.CharAttributeStrike:
		*t = t.WithAttr(qcolor.AttrStrikethrough)
	case ansicode.CharAttributeCancelBold:
		*t = t.WithoutAttr(qcolor.AttrBold)
	case ansicode.CharAttributeCancelBoldDim:
		*t = t.WithoutAttr(qcolor.AttrBold | qcolor.AttrDim)
	case ansicode.CharAttributeCancelItalic:
		*t = t.WithoutAttr(qcolor.AttrItalic)
	case ansicode.CharAttributeCancelUnderline:
		*t = t.WithoutAttr(qcolor.AttrUnderline)
	case ansicode.CharAttributeCancelBlink:
		*t = t.WithoutAttr(qcolor.AttrBlink)
	case ansicode.CharAttributeCancelReverse:
		*t = t.WithoutAttr(qcolor.AttrReverse)
	case ansicode.CharAttributeCancelHidden:
		*t = t.WithoutAttr(qcolor.AttrHidden)
	case ansicode.CharAttributeCancelStrike:
		*t = t.WithoutAttr(qcolor.AttrStrikethrough)
	case ansicode.CharAttributeForeground:
		*t = t.WithFg(h.resolveColor(attr))
	case ansicode.CharAttributeBackground:
		*t = t.WithBg(h.resolveColor(attr))
	}
}

func (h *decodeHandler) resolveColor(attr ansicode.TerminalCharAttribute) qcolor.Descriptor {
	if attr.RGBColor != nil {
		return qcolor.RGBDescriptor(qcolor.RGB(attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B))
	}
	if attr.IndexedColor != nil {
		return qcolor.Indexed(int(attr.IndexedColor.Index))
	}
	if attr.NamedColor != nil {
		return qcolor.Named(int(*attr.NamedColor))
	}
	return qcolor.Default
}

func (h *decodeHandler) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	if hyperlink == nil {
		h.p.currentHyperlink = ""
		return
	}
	h.p.currentHyperlink = hyperlink.URI
}

// The remainder of ansicode.Handler: cursor motion, scrolling regions,
// charsets, keyboard modes and graphics protocols. None of these have a
// representation in spec.md's append-only grid, so they are no-ops.

func (h *decodeHandler) Tab(n int)                                                                {}
func (h *decodeHandler) ClearLine(mode ansicode.LineClearMode)                                     {}
func (h *decodeHandler) ClearTabs(mode ansicode.TabulationClearMode)                               {}
func (h *decodeHandler) Goto(row, col int)                                                         {}
func (h *decodeHandler) GotoLine(row int)                                                          {}
func (h *decodeHandler) GotoCol(col int)                                                           {}
func (h *decodeHandler) MoveUp(n int)                                                              {}
func (h *decodeHandler) MoveDown(n int)                                                            {}
func (h *decodeHandler) MoveForward(n int)                                                         {}
func (h *decodeHandler) MoveBackward(n int)                                                        {}
func (h *decodeHandler) MoveUpCr(n int)                                                            {}
func (h *decodeHandler) MoveDownCr(n int)                                                          {}
func (h *decodeHandler) MoveForwardTabs(n int)                                                     {}
func (h *decodeHandler) MoveBackwardTabs(n int)                                                    {}
func (h *decodeHandler) InsertBlank(n int)                                                         {}
func (h *decodeHandler) InsertBlankLines(n int)                                                    {}
func (h *decodeHandler) DeleteChars(n int)                                                         {}
func (h *decodeHandler) DeleteLines(n int)                                                         {}
func (h *decodeHandler) EraseChars(n int)                                                          {}
func (h *decodeHandler) ScrollUp(n int)                                                            {}
func (h *decodeHandler) ScrollDown(n int)                                                          {}
func (h *decodeHandler) SetScrollingRegion(top, bottom int)                                        {}
func (h *decodeHandler) SetMode(mode ansicode.TerminalMode)                                        {}
func (h *decodeHandler) UnsetMode(mode ansicode.TerminalMode)                                      {}
func (h *decodeHandler) SetCursorStyle(style ansicode.CursorStyle)                                 {}
func (h *decodeHandler) SaveCursorPosition()                                                       {}
func (h *decodeHandler) RestoreCursorPosition()                                                    {}
func (h *decodeHandler) ReverseIndex()                                                              {}
func (h *decodeHandler) ResetState()                                                               {}
func (h *decodeHandler) Substitute()                                                               {}
func (h *decodeHandler) Decaln()                                                                   {}
func (h *decodeHandler) DeviceStatus(n int)                                                        {}
func (h *decodeHandler) IdentifyTerminal(b byte)                                                   {}
func (h *decodeHandler) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset)     {}
func (h *decodeHandler) SetActiveCharset(n int)                                                    {}
func (h *decodeHandler) SetKeypadApplicationMode()                                                 {}
func (h *decodeHandler) UnsetKeypadApplicationMode()                                               {}
func (h *decodeHandler) SetColor(index int, c imgcolor.Color)                                      {}
func (h *decodeHandler) ResetColor(i int)                                                          {}
func (h *decodeHandler) SetDynamicColor(prefix string, index int, terminator string)               {}
func (h *decodeHandler) ClipboardLoad(clipboard byte, terminator string)                           {}
func (h *decodeHandler) ClipboardStore(clipboard byte, data []byte)                                {}
// PushTitle/PopTitle drive the supplemental title stack (SPEC_FULL.md §3);
// the stack itself lives behind hooks.TitleProvider, not in the grid, so
// these just forward the mark as an Event.
func (h *decodeHandler) PushTitle() { h.p.emit(Event{Kind: EventTitlePush}) }
func (h *decodeHandler) PopTitle()  { h.p.emit(Event{Kind: EventTitlePop}) }
func (h *decodeHandler) TextAreaSizeChars()                                                        {}
func (h *decodeHandler) TextAreaSizePixels()                                                       {}
func (h *decodeHandler) CellSizePixels()                                                           {}
func (h *decodeHandler) HorizontalTabSet()                                                         {}
func (h *decodeHandler) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
}
func (h *decodeHandler) PushKeyboardMode(mode ansicode.KeyboardMode) {}
func (h *decodeHandler) PopKeyboardMode(n int)                       {}
func (h *decodeHandler) ReportKeyboardMode()                         {}
func (h *decodeHandler) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {}
func (h *decodeHandler) ReportModifyOtherKeys()                             {}
func (h *decodeHandler) ApplicationCommandReceived(data []byte)             {}
func (h *decodeHandler) PrivacyMessageReceived(data []byte)                 {}
func (h *decodeHandler) StartOfStringReceived(data []byte)                  {}
func (h *decodeHandler) SetWorkingDirectory(uri string)                     {}
func (h *decodeHandler) SixelReceived(params [][]uint16, data []byte)       {}
