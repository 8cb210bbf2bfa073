package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVMStringHidesPassword(t *testing.T) {
	vm := VM{Index: 2, IP: "10.0.0.2", Password: "pw2"}
	assert.Equal(t, "vm-2(10.0.0.2)", vm.String())
	assert.NotContains(t, fmt.Sprintf("%v %s %+v", vm, vm, vm), "pw2")
}

func TestVMAddress(t *testing.T) {
	vm := VM{Index: 1, IP: "10.0.0.1"}
	assert.Equal(t, "10.0.0.1:22", vm.Address(""))
	assert.Equal(t, "10.0.0.1:2222", vm.Address("2222"))
}

func TestTargetCommandArgs(t *testing.T) {
	target := Target{Name: "server", Path: "server/server.go", Args: []string{"-c", "server/config.json"}}
	assert.Equal(t, []string{"run", "server/server.go", "-c", "server/config.json"}, target.CommandArgs())
	assert.Equal(t, []string{"run", "node/main.go"}, Target{Path: "node/main.go"}.CommandArgs())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("boom")))

	err := fmt.Errorf("pull: %w", &RemoteCommandError{Command: "git pull", ExitCode: 128, Err: errors.New("exit 128")})
	assert.Equal(t, 128, ExitCode(err))
}

func TestErrorsUnwrap(t *testing.T) {
	cfgErr := &ConfigurationError{Reason: "vm 11", Err: ErrInvalidVM}
	assert.True(t, errors.Is(cfgErr, ErrInvalidVM))
	assert.Contains(t, cfgErr.Error(), "vm 11")

	connErr := &ConnectionError{Address: "10.0.0.1:22", Err: errors.New("i/o timeout")}
	assert.Contains(t, connErr.Error(), "10.0.0.1:22")
	var target *ConnectionError
	assert.True(t, errors.As(fmt.Errorf("dial: %w", connErr), &target))
}
