package types

import (
	"fmt"
	"net"
)

// VM is one entry of the demo VM pool, addressed by a 1-based index.
type VM struct {
	Index    int    `json:"index" yaml:"index"`
	IP       string `json:"ip" yaml:"ip"`
	Password string `json:"-" yaml:"-"`
}

// Address returns the host:port pair used to dial the VM.
func (v VM) Address(port string) string {
	if port == "" {
		port = "22"
	}
	return net.JoinHostPort(v.IP, port)
}

// String never includes the password.
func (v VM) String() string {
	return fmt.Sprintf("vm-%d(%s)", v.Index, v.IP)
}

// Target is a named source file in the remote project that can be built and run.
type Target struct {
	Name string   `json:"name" yaml:"name"`
	Path string   `json:"path" yaml:"path"`
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// CommandArgs returns the toolchain arguments for running the target.
func (t Target) CommandArgs() []string {
	return append([]string{"run", t.Path}, t.Args...)
}
