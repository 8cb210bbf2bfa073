// Package oneshot logs into a VM with the local ssh client and then runs a known target locally.
package oneshot

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/credential"
	"github.com/cnrancher/vmdemo/pkg/hosts"
	"github.com/cnrancher/vmdemo/pkg/hosts/dialer"
	"github.com/cnrancher/vmdemo/pkg/targets"
	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"

	execute "github.com/alexellis/go-execute/pkg/v1"
	"github.com/sirupsen/logrus"
)

// Runner holds the dependencies of a one-shot run. NewShell and Execute default to a pty and go-execute.
type Runner struct {
	Loader  *credential.Loader
	Targets *targets.Table
	Options *types.Options

	NewShell func(cmd *exec.Cmd) (hosts.Shell, error)
	Execute  func(task execute.ExecTask) (execute.ExecResult, error)

	Logger *logrus.Logger
}

// NewRunner returns a runner with the default shell and executor.
func NewRunner(loader *credential.Loader, table *targets.Table, opts *types.Options, logger *logrus.Logger) *Runner {
	if opts == nil {
		opts = &types.Options{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{
		Loader:  loader,
		Targets: table,
		Options: opts,
		NewShell: func(cmd *exec.Cmd) (hosts.Shell, error) {
			return dialer.NewPtyShell(cmd)
		},
		Execute: func(task execute.ExecTask) (execute.ExecResult, error) {
			return task.Execute()
		},
		Logger: logger,
	}
}

// Run validates vm and file before reading any credential file, opens the ssh login and,
// once it ends, runs the target locally.
func (r *Runner) Run(vm, file string) error {
	index, err := credential.ParseIndex(vm)
	if err != nil {
		return err
	}
	target, err := r.Targets.Lookup(file)
	if err != nil {
		return &types.ConfigurationError{Reason: "file", Err: err}
	}

	v, err := r.Loader.Load(index)
	if err != nil {
		return err
	}
	r.Logger.AddHook(common.NewRedactHook(v.Password))

	if err := r.login(v); err != nil {
		return err
	}
	return r.runLocal(target)
}

// SSHCommand builds the login command. The password travels in SSHPASS, never in argv.
func (r *Runner) SSHCommand(vm *types.VM) *exec.Cmd {
	key := r.Options.SSHKeyPath
	if key == "" {
		key = common.DefaultKey
	}
	user := r.Options.User
	if user == "" {
		user = common.DefaultUser
	}
	port := r.Options.SSHPort
	if port == "" {
		port = common.DefaultPort
	}

	args := []string{"-e", "ssh", "-i", utils.ExpandPath(key), "-p", port}
	if !r.Options.StrictHostKey {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}
	args = append(args, fmt.Sprintf("%s@%s", user, vm.IP))

	cmd := exec.Command("sshpass", args...)
	cmd.Env = append(os.Environ(), "SSHPASS="+vm.Password)
	return cmd
}

func (r *Runner) login(vm *types.VM) error {
	cmd := r.SSHCommand(vm)
	r.Logger.Infof("[oneshot] logging into %s", vm)

	shell, err := r.NewShell(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shell.Close() }()

	if err := shell.Terminal(); err != nil {
		return fmt.Errorf("ssh session to %s ended with error: %w", vm, err)
	}
	return nil
}

func (r *Runner) runLocal(target types.Target) error {
	task := execute.ExecTask{
		Command:     "go",
		Args:        target.CommandArgs(),
		StreamStdio: true,
	}
	r.Logger.Infof("[oneshot] running %s locally", target.Path)

	res, err := r.Execute(task)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("go run %s exited with code %d", target.Path, res.ExitCode)
	}
	return nil
}
