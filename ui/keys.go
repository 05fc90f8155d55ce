package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"termview/screen"
)

var keySequences = map[tcell.Key]string{
	tcell.KeyEnter:      "\r",
	tcell.KeyBackspace:  "\x7f",
	tcell.KeyBackspace2: "\x7f",
	tcell.KeyTab:        "\t",
	tcell.KeyBacktab:    "\x1b[Z",
	tcell.KeyEscape:     "\x1b",
	tcell.KeyPgUp:       "\x1b[5~",
	tcell.KeyPgDn:       "\x1b[6~",
	tcell.KeyDelete:     "\x1b[3~",
	tcell.KeyInsert:     "\x1b[2~",
	tcell.KeyF1:         "\x1bOP",
	tcell.KeyF2:         "\x1bOQ",
	tcell.KeyF3:         "\x1bOR",
	tcell.KeyF4:         "\x1bOS",
	tcell.KeyF5:         "\x1b[15~",
	tcell.KeyF6:         "\x1b[17~",
	tcell.KeyF7:         "\x1b[18~",
	tcell.KeyF8:         "\x1b[19~",
	tcell.KeyF9:         "\x1b[20~",
	tcell.KeyF10:        "\x1b[21~",
	tcell.KeyF11:        "\x1b[23~",
	tcell.KeyF12:        "\x1b[24~",

	// Ctrl+H, I and M share codes with backspace, tab and enter above.
	tcell.KeyCtrlA: "\x01",
	tcell.KeyCtrlB: "\x02",
	tcell.KeyCtrlC: "\x03",
	tcell.KeyCtrlD: "\x04",
	tcell.KeyCtrlE: "\x05",
	tcell.KeyCtrlF: "\x06",
	tcell.KeyCtrlG: "\x07",
	tcell.KeyCtrlJ: "\x0a",
	tcell.KeyCtrlK: "\x0b",
	tcell.KeyCtrlL: "\x0c",
	tcell.KeyCtrlN: "\x0e",
	tcell.KeyCtrlO: "\x0f",
	tcell.KeyCtrlP: "\x10",
	tcell.KeyCtrlQ: "\x11",
	tcell.KeyCtrlR: "\x12",
	tcell.KeyCtrlS: "\x13",
	tcell.KeyCtrlT: "\x14",
	tcell.KeyCtrlU: "\x15",
	tcell.KeyCtrlV: "\x16",
	tcell.KeyCtrlW: "\x17",
	tcell.KeyCtrlX: "\x18",
	tcell.KeyCtrlY: "\x19",
	tcell.KeyCtrlZ: "\x1a",
}

// cursorKeys holds the final byte of the cursor movement sequences.
var cursorKeys = map[tcell.Key]byte{
	tcell.KeyUp:    'A',
	tcell.KeyDown:  'B',
	tcell.KeyRight: 'C',
	tcell.KeyLeft:  'D',
	tcell.KeyHome:  'H',
	tcell.KeyEnd:   'F',
}

// KeyBytes translates a key event into the bytes a program expects on its
// input. It returns nil for keys with no terminal encoding.
func KeyBytes(ev *tcell.EventKey, mode screen.Mode) []byte {
	mods := ev.Modifiers()

	if final, ok := cursorKeys[ev.Key()]; ok {
		if m := xtermModifier(mods); m > 1 {
			return fmt.Appendf(nil, "\x1b[1;%d%c", m, final)
		}
		if mode.AppCursorKeys {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}

	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if mods&tcell.ModCtrl != 0 {
			if c, ok := controlCode(r); ok {
				r = c
			}
		}
		s := string(r)
		if mods&tcell.ModAlt != 0 {
			s = "\x1b" + s
		}
		return []byte(s)
	}

	if seq, ok := keySequences[ev.Key()]; ok {
		if mods&tcell.ModAlt != 0 {
			seq = "\x1b" + seq
		}
		return []byte(seq)
	}
	return nil
}

// controlCode maps a letter typed with Ctrl to its C0 control character.
func controlCode(r rune) (rune, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 1, true
	case r >= '@' && r <= '_':
		return r & 0x1f, true
	}
	return r, false
}

// xtermModifier encodes modifiers the way xterm does in CSI 1;m sequences.
func xtermModifier(mods tcell.ModMask) int {
	m := 1
	if mods&tcell.ModShift != 0 {
		m++
	}
	if mods&tcell.ModAlt != 0 {
		m += 2
	}
	if mods&tcell.ModCtrl != 0 {
		m += 4
	}
	return m
}
