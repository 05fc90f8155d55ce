package clipboardx

import "testing"

func TestPasteBytesPlain(t *testing.T) {
	got := string(PasteBytes("a\r\nb\nc", false))
	if got != "a\rb\rc" {
		t.Fatalf("expected carriage returns, got %q", got)
	}
}

func TestPasteBytesBracketed(t *testing.T) {
	got := string(PasteBytes("ls\x1b[201~rm\n", true))
	if got != "\x1b[200~lsrm\r\x1b[201~" {
		t.Fatalf("unexpected bracketed paste %q", got)
	}
}
