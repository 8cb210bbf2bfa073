package hosts

import "io"

// Script runs commands on a remote host and returns their combined output.
type Script interface {
	ExecuteCommands(cmds ...string) (output string, err error)
	Close() error
}

// Shell attaches local stdio to an interactive login.
type Shell interface {
	SetIO(stdout, stderr io.Writer, stdin io.ReadCloser)
	Terminal() error
	Wait() error
	Close() error
}

// ShellWindowSize terminal window size.
type ShellWindowSize struct {
	Width  int
	Height int
}
