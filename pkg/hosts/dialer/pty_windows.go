//go:build windows
// +build windows

package dialer

import (
	"errors"
	"io"
	"os/exec"

	"github.com/cnrancher/vmdemo/pkg/hosts"
)

var _ hosts.Shell = &PtyShell{}

// PtyShell is not available on windows.
type PtyShell struct{}

func NewPtyShell(_ *exec.Cmd) (*PtyShell, error) {
	return nil, errors.New("[pty-dialer] pty terminal not supported on windows")
}

func (d *PtyShell) SetIO(_, _ io.Writer, _ io.ReadCloser) {}

func (d *PtyShell) Terminal() error {
	return errors.New("pty terminal not supported")
}

func (d *PtyShell) Wait() error {
	return nil
}

func (d *PtyShell) Close() error {
	return nil
}
