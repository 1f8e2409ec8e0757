package main

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// decodeKey turns a raw byte run read from stdin in raw mode into a
// tcell.EventKey, following the same small escape-sequence vocabulary h2's
// overlay.go and vt.go decode by hand rather than through a full terminfo
// table: bare ESC, the four CSI arrow keys, Backspace/Enter/Tab, the C0
// control range (which tcell's CtrlA..CtrlZ constants already alias to their
// ASCII values 1-26), and otherwise a single decoded UTF-8 rune.
func decodeKey(b []byte) *tcell.EventKey {
	if len(b) == 0 {
		return nil
	}

	if b[0] == 0x1b {
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
			case 'B':
				return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
			case 'C':
				return tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)
			case 'D':
				return tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone)
			}
		}
		return tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	}

	switch b[0] {
	case 0x7f, 0x08:
		return tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone)
	case '\r', '\n':
		return tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	case '\t':
		return tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)
	}

	if b[0] >= 0x01 && b[0] <= 0x1a {
		return tcell.NewEventKey(tcell.Key(b[0]), 0, tcell.ModCtrl)
	}

	r, _ := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return nil
	}
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}
