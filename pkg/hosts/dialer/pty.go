//go:build darwin || linux
// +build darwin linux

package dialer

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/cnrancher/vmdemo/pkg/hosts"

	"github.com/creack/pty"
	"github.com/moby/term"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	xterm "golang.org/x/term"
)

var _ hosts.Shell = &PtyShell{}

// PtyShell runs a local command, typically the ssh binary, inside a pty attached to the user's terminal.
type PtyShell struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	conn *os.File
	cmd  *exec.Cmd
}

// NewPtyShell returns new pty shell struct.
func NewPtyShell(cmd *exec.Cmd) (*PtyShell, error) {
	if cmd == nil {
		return nil, errors.New("[pty-dialer] no cmd is specified")
	}

	return &PtyShell{cmd: cmd, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}, nil
}

// Close close the pty connection.
func (d *PtyShell) Close() error {
	if d.conn != nil {
		if err := d.conn.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return err
		}
	}
	return nil
}

// SetIO set shell's reader and writer.
func (d *PtyShell) SetIO(stdout, stderr io.Writer, stdin io.ReadCloser) {
	d.Stdout = stdout
	d.Stderr = stderr
	d.Stdin = stdin
}

// Terminal starts the command and proxies stdio until it exits, then closes the pty.
// When stdin is a terminal it is switched to raw mode and the pty follows its window size.
func (d *PtyShell) Terminal() error {
	defer func() {
		_ = d.Close()
	}()

	fd, isTerm := term.GetFdInfo(d.Stdin)
	if isTerm {
		oldState, err := xterm.MakeRaw(int(fd))
		if err != nil {
			return err
		}
		defer func() {
			_ = xterm.Restore(int(fd), oldState)
		}()
	}

	if err := d.OpenTerminal(); err != nil {
		return err
	}
	if isTerm {
		stop := d.watchWindowSize(fd)
		defer stop()
	}

	return d.Wait()
}

// OpenTerminal starts the command on a new pty.
// The stdin copy stays blocked on its reader after the command exits and returns on the
// next read once the pty is closed, or with the process.
func (d *PtyShell) OpenTerminal() error {
	p, err := pty.Start(d.cmd)
	if err != nil {
		return err
	}
	d.conn = p

	go func() {
		_, _ = io.Copy(p, d.Stdin)
	}()

	return nil
}

// watchWindowSize resizes the pty to the terminal behind fd now and on every SIGWINCH.
// The returned func stops watching.
func (d *PtyShell) watchWindowSize(fd uintptr) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	ch <- syscall.SIGWINCH

	go func() {
		for range ch {
			if err := d.resize(fd); err != nil {
				logrus.Debugf("[pty-dialer] failed to resize pty: %v", err)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}

func (d *PtyShell) resize(fd uintptr) error {
	ws, err := term.GetWinsize(fd)
	if err != nil {
		return err
	}
	return d.ChangeWindowSize(hosts.ShellWindowSize{Width: int(ws.Width), Height: int(ws.Height)})
}

// ChangeWindowSize changes to the current window size.
func (d *PtyShell) ChangeWindowSize(win hosts.ShellWindowSize) error {
	return pty.Setsize(d.conn, &pty.Winsize{
		Rows: uint16(win.Height),
		Cols: uint16(win.Width),
	})
}

// Wait drains the pty output and waits for the command to exit.
func (d *PtyShell) Wait() error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(d.Stdout, d.conn)
		// the pty returns EIO once the child exits
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil
		}
		return err
	})
	g.Go(d.cmd.Wait)
	return g.Wait()
}
