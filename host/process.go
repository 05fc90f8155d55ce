package host

import (
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// Child is the program whose output the host mirrors.
type Child interface {
	io.ReadWriter
	Resize(rows, cols int) error
	// Wait blocks until the program exits.
	Wait() error
	Close() error
}

// Process is a child running on a pseudo-terminal.
type Process struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

// StartProcess runs shell on a new pty of the given size.
func StartProcess(shell string, rows, cols int) (*Process, error) {
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, err
	}
	return &Process{ptmx: ptmx, cmd: cmd}, nil
}

func (p *Process) Read(b []byte) (int, error)  { return p.ptmx.Read(b) }
func (p *Process) Write(b []byte) (int, error) { return p.ptmx.Write(b) }

func (p *Process) Resize(rows, cols int) error {
	return pty.Setsize(p.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

func (p *Process) Wait() error {
	return p.cmd.Wait()
}

// Close kills the program if it is still running.
func (p *Process) Close() error {
	err := p.ptmx.Close()
	if p.cmd.Process != nil && p.cmd.ProcessState == nil {
		p.cmd.Process.Kill()
	}
	return err
}
