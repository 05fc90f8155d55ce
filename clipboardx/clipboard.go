// Package clipboardx moves text between the terminal buffer and the system
// clipboard.
package clipboardx

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"termview/render"
)

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

var (
	mu       sync.Mutex
	internal string
)

// Write puts text on every clipboard that accepts it. The text is always
// kept in-process so Read works without a system clipboard.
func Write(text string) bool {
	mu.Lock()
	internal = text
	mu.Unlock()

	ok := false
	if err := clipboard.WriteAll(text); err == nil {
		ok = true
	}
	if writeWithCommands(text) {
		ok = true
	}
	if writeOSC52(text) {
		ok = true
	}
	return ok
}

func Read() string {
	if text, err := clipboard.ReadAll(); err == nil && text != "" {
		return text
	}
	if text, ok := readWithCommands(); ok && text != "" {
		return text
	}
	mu.Lock()
	defer mu.Unlock()
	return internal
}

// Copy writes text selected from a terminal buffer. Soft-wrapped rows are
// joined back together and continuation markers removed.
func Copy(text string) bool {
	return Write(render.Unwrap(text))
}

// PasteBytes formats text for the program's input. Line endings become
// carriage returns. With bracketed paste the text is framed by the paste
// markers, and any end marker inside the text is removed so the paste
// cannot terminate early.
func PasteBytes(text string, bracketed bool) []byte {
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	if !bracketed {
		return []byte(text)
	}
	text = strings.ReplaceAll(text, pasteEnd, "")
	return []byte(pasteStart + text + pasteEnd)
}

func writeWithCommands(text string) bool {
	commands := []struct {
		name string
		args []string
	}{
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
		{name: "pbcopy"},
		{name: "clip.exe"},
	}

	ok := false
	for _, c := range commands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			ok = true
		}
	}
	return ok
}

func readWithCommands() (string, bool) {
	commands := []struct {
		name string
		args []string
	}{
		{name: "wl-paste", args: []string{"--no-newline"}},
		{name: "xclip", args: []string{"-o", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--output"}},
		{name: "pbpaste"},
		{name: "powershell.exe", args: []string{"-NoProfile", "-Command", "Get-Clipboard"}},
	}

	for _, c := range commands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		out, err := exec.Command(c.name, c.args...).Output()
		if err == nil && len(out) > 0 {
			return string(out), true
		}
	}
	return "", false
}

// writeOSC52 asks the outer terminal to set its clipboard. It only works
// when stdout is a tty.
func writeOSC52(text string) bool {
	if text == "" {
		return false
	}
	if fi, err := os.Stdout.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return false
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(os.Stdout, "\x1b]52;c;%s\x07", encoded)
	return err == nil
}
