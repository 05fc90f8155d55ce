package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"termview/screen"
)

func TestKeyBytesCursorKeys(t *testing.T) {
	up := tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	if got := string(KeyBytes(up, screen.Mode{})); got != "\x1b[A" {
		t.Fatalf("expected normal cursor key, got %q", got)
	}
	if got := string(KeyBytes(up, screen.Mode{AppCursorKeys: true})); got != "\x1bOA" {
		t.Fatalf("expected application cursor key, got %q", got)
	}
}

func TestKeyBytesModifiedCursorKey(t *testing.T) {
	ev := tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModCtrl)
	if got := string(KeyBytes(ev, screen.Mode{AppCursorKeys: true})); got != "\x1b[1;5C" {
		t.Fatalf("expected ctrl+right sequence, got %q", got)
	}
}

func TestKeyBytesRunes(t *testing.T) {
	if got := string(KeyBytes(tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), screen.Mode{})); got != "é" {
		t.Fatalf("expected rune bytes, got %q", got)
	}
	if got := string(KeyBytes(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModAlt), screen.Mode{})); got != "\x1bb" {
		t.Fatalf("expected alt prefix, got %q", got)
	}
}

func TestKeyBytesSpecialKeys(t *testing.T) {
	cases := map[tcell.Key]string{
		tcell.KeyPgUp:   "\x1b[5~",
		tcell.KeyF5:     "\x1b[15~",
		tcell.KeyDelete: "\x1b[3~",
		tcell.KeyHome:   "\x1b[H",
	}
	for k, want := range cases {
		if got := string(KeyBytes(tcell.NewEventKey(k, 0, tcell.ModNone), screen.Mode{})); got != want {
			t.Fatalf("key %v: expected %q, got %q", k, want, got)
		}
	}
}

func TestControlCode(t *testing.T) {
	if c, ok := controlCode('c'); !ok || c != 3 {
		t.Fatalf("expected ctrl+c to be 3, got %d", c)
	}
	if c, ok := controlCode('['); !ok || c != 0x1b {
		t.Fatalf("expected ctrl+[ to be escape, got %d", c)
	}
	if _, ok := controlCode('1'); ok {
		t.Fatalf("digits have no control code")
	}
}
