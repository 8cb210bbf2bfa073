package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVM is returned for VM indices outside the pool or non-numeric input.
	ErrInvalidVM = errors.New("invalid vm index")
	// ErrUnknownTarget is returned when a run target is not in the known-targets table.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrInvalidAction is returned for unrecognized dispatcher input.
	ErrInvalidAction = errors.New("invalid action")
)

// ConfigurationError reports bad input files, indices or targets. It is fatal.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a failed dial, authentication, timeout or a lost session. It is fatal.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("[ssh-dialer] connection to %s failed: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RemoteCommandError reports a command that ran but exited non-zero.
// ExitCode is -1 when the remote side did not report a status.
type RemoteCommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *RemoteCommandError) Error() string {
	return fmt.Sprintf("remote command exited with code %d: %v", e.ExitCode, e.Err)
}

func (e *RemoteCommandError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the remote exit code from err: 0 for nil, -1 when unknown.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var rce *RemoteCommandError
	if errors.As(err, &rce) {
		return rce.ExitCode
	}
	return -1
}
