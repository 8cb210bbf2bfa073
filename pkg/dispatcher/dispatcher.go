// Package dispatcher implements the read-eval loop that maps action names to remote commands.
package dispatcher

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/hosts"
	"github.com/cnrancher/vmdemo/pkg/targets"
	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"

	"github.com/alessio/shellescape"
	"github.com/imdario/mergo"
	"github.com/sirupsen/logrus"
)

const (
	actionPrompt = "What would you like to do? [pull, run, clean, custom, status, checkout, help, exit]"
	targetPrompt = "Which file would you like to run?"
	customPrompt = "Enter your custom action"
	branchPrompt = "Which branch would you like to checkout?"
)

var envKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Recorder receives one entry per remote command.
type Recorder interface {
	Record(h *common.History) error
}

type action struct {
	description string
	run         func(d *Dispatcher) error
}

var actions map[string]action

func init() {
	actions = map[string]action{
		"pull":     {"pull the latest code in the project directory", pull},
		"run":      {"build and run a known target with the Go toolchain", run},
		"clean":    {"kill the process listening on the demo port", clean},
		"custom":   {"run an arbitrary shell command, unsanitized", custom},
		"status":   {"show git status of the project directory", status},
		"checkout": {"check out a git branch in the project directory", checkout},
		"help":     {"list the available actions", help},
	}
}

// Dispatcher runs one action per input line against a single remote session.
type Dispatcher struct {
	vm       *types.VM
	script   hosts.Script
	targets  *targets.Table
	prompter utils.Prompter
	out      io.Writer

	workDir   string
	cleanPort int
	env       map[string]string

	Recorder Recorder
	Logger   *logrus.Logger
}

// New returns a dispatcher for vm. Zero option values fall back to the defaults in pkg/common.
func New(vm *types.VM, script hosts.Script, table *targets.Table, prompter utils.Prompter, out io.Writer,
	opts *types.Options) (*Dispatcher, error) {
	if opts == nil {
		opts = &types.Options{}
	}
	d := &Dispatcher{
		vm:        vm,
		script:    script,
		targets:   table,
		prompter:  prompter,
		out:       out,
		workDir:   opts.WorkDir,
		cleanPort: opts.CleanPort,
		env:       map[string]string{},
		Logger:    logrus.StandardLogger(),
	}
	if d.workDir == "" {
		d.workDir = common.DefaultWorkDir
	}
	if d.cleanPort <= 0 {
		d.cleanPort = common.CleanPort
	}
	for k, v := range opts.Env {
		d.env[k] = v
	}
	// entries from the env option win, mergo only fills the toolchain keys they leave unset
	if err := mergo.Merge(&d.env, common.ToolchainEnv); err != nil {
		return nil, err
	}
	return d, nil
}

// Run loops until exit, quit or end of input. Only a lost connection ends it with an error.
func (d *Dispatcher) Run() error {
	for {
		line, err := d.prompter.Ask(actionPrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := d.Dispatch(line)
		if err != nil || done {
			return err
		}
	}
}

// Dispatch handles one input line. done is true for exit and quit.
func (d *Dispatcher) Dispatch(line string) (done bool, err error) {
	name := strings.ToLower(strings.TrimSpace(line))
	switch name {
	case "exit", "quit":
		return true, nil
	case "":
		return false, nil
	}

	a, ok := actions[name]
	if !ok {
		fmt.Fprintf(d.out, "%v %q, type help to list the actions\n", types.ErrInvalidAction, line)
		return false, nil
	}

	err = a.run(d)
	if err == nil {
		return false, nil
	}
	var connErr *types.ConnectionError
	if errors.As(err, &connErr) {
		return true, err
	}
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	fmt.Fprintf(d.out, "Error: %v\n", err)
	return false, nil
}

func (d *Dispatcher) execute(name string, cmds ...string) (string, error) {
	command := strings.Join(cmds, "\n")
	d.Logger.Infof("[%s] running action %s", d.vm, name)

	out, err := d.script.ExecuteCommands(cmds...)
	if out != "" {
		fmt.Fprint(d.out, out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(d.out)
		}
	}

	if d.Recorder != nil {
		h := &common.History{VM: d.vm.Index, Host: d.vm.IP, Action: name, Command: command, ExitCode: types.ExitCode(err)}
		if recErr := d.Recorder.Record(h); recErr != nil {
			d.Logger.Warnf("failed to record history: %v", recErr)
		}
	}
	return out, err
}

func (d *Dispatcher) inWorkDir(cmd string) string {
	return fmt.Sprintf("cd %s && %s", quoteDir(d.workDir), cmd)
}

func (d *Dispatcher) exports() []string {
	keys := make([]string, 0, len(d.env))
	for k := range d.env {
		if !envKey.MatchString(k) {
			d.Logger.Warnf("skipping invalid environment variable name %q", k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("export %s=%s", k, expandable(d.env[k])))
	}
	return lines
}

func pull(d *Dispatcher) error {
	_, err := d.execute("pull", d.inWorkDir("git pull"))
	return err
}

func status(d *Dispatcher) error {
	_, err := d.execute("status", d.inWorkDir("git status"))
	return err
}

func checkout(d *Dispatcher) error {
	branch, err := d.prompter.Ask(branchPrompt)
	if err != nil {
		return err
	}
	branch = strings.TrimSpace(branch)
	if branch == "" {
		fmt.Fprintln(d.out, "No branch given")
		return nil
	}
	_, err = d.execute("checkout", d.inWorkDir("git checkout "+shellescape.Quote(branch)))
	return err
}

// run exports the toolchain environment for this command only and runs the target from the project directory.
func run(d *Dispatcher) error {
	name, err := d.prompter.Ask(fmt.Sprintf("%s %v", targetPrompt, d.targets.Names()))
	if err != nil {
		return err
	}
	target, err := d.targets.Lookup(strings.TrimSpace(name))
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Running %s\n", target.Name)

	cmds := append(d.exports(), d.inWorkDir(shellescape.QuoteCommand(append([]string{"go"}, target.CommandArgs()...))))
	_, err = d.execute("run", cmds...)
	return err
}

// clean looks up the PIDs bound to the clean port and sends them SIGKILL.
func clean(d *Dispatcher) error {
	out, err := d.execute("clean", fmt.Sprintf("lsof -t -i tcp:%d", d.cleanPort))
	if err != nil && !noListener(out, err) {
		return err
	}
	pids := parsePIDs(out)
	if len(pids) == 0 {
		fmt.Fprintf(d.out, "No process is listening on port %d\n", d.cleanPort)
		return nil
	}

	if _, err := d.execute("clean", "kill -9 "+strings.Join(pids, " ")); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Killed process %s on port %d\n", strings.Join(pids, ", "), d.cleanPort)
	return nil
}

// noListener reports whether a failed lookup is lsof's silent exit 1 for a port nobody holds.
func noListener(out string, err error) bool {
	var cmdErr *types.RemoteCommandError
	return errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 && strings.TrimSpace(out) == ""
}

// custom is an unsanitized passthrough: the operator is trusted and the text is executed as typed,
// with runs of whitespace collapsed.
func custom(d *Dispatcher) error {
	text, err := d.prompter.Ask(customPrompt)
	if err != nil {
		return err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		fmt.Fprintln(d.out, "No command given")
		return nil
	}
	_, err = d.execute("custom", strings.Join(fields, " "))
	return err
}

func help(d *Dispatcher) error {
	names := make([]string, 0, len(actions)+1)
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(d.out, "  %-9s %s\n", name, actions[name].description)
	}
	fmt.Fprintf(d.out, "  %-9s %s\n", "exit", "close the session (also quit)")
	return nil
}

func parsePIDs(out string) []string {
	seen := map[string]bool{}
	pids := make([]string, 0)
	for _, field := range strings.Fields(out) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 {
			continue
		}
		s := strconv.Itoa(pid)
		if !seen[s] {
			seen[s] = true
			pids = append(pids, s)
		}
	}
	return pids
}

// quoteDir keeps a leading "~/" unquoted so the remote shell expands it.
func quoteDir(dir string) string {
	if strings.HasPrefix(dir, "~/") {
		return "~/" + shellescape.Quote(dir[2:])
	}
	return shellescape.Quote(dir)
}

// expandable double-quotes v, leaving $VAR references for the remote shell.
func expandable(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")
	return `"` + r.Replace(v) + `"`
}
