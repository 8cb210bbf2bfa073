package dialer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/hosts"
	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const scriptWrapper = `#!/bin/sh
set -e
%s
`

var _ hosts.Script = &SSHDialer{}

// SSHDialer owns the single SSH connection to one VM. Every command runs in its own session.
type SSHDialer struct {
	sshKey        string
	sshAddress    string
	username      string
	password      string
	passphrase    string
	knownHosts    string
	strictHostKey bool
	timeout       time.Duration

	// Writer receives a copy of every command's output, e.g. the VM log file.
	Writer io.Writer

	conn *ssh.Client

	uid    int
	logger *logrus.Logger
}

// NewSSHDialer dials the VM once. There are no retries: a failed dial returns a *types.ConnectionError.
func NewSSHDialer(vm *types.VM, opts *types.Options, logger *logrus.Logger) (*SSHDialer, error) {
	if vm == nil || vm.IP == "" {
		return nil, errors.New("[ssh-dialer] no vm IP is specified")
	}
	if opts == nil {
		opts = &types.Options{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	d := &SSHDialer{
		sshAddress:    vm.Address(opts.SSHPort),
		username:      opts.User,
		password:      vm.Password,
		passphrase:    opts.SSHKeyPassphrase,
		knownHosts:    opts.KnownHosts,
		strictHostKey: opts.StrictHostKey,
		timeout:       opts.ConnTimeout,
		logger:        logger,
		uid:           -1,
	}
	if d.username == "" {
		d.username = common.DefaultUser
	}
	if d.timeout <= 0 {
		d.timeout = common.ConnectTimeout
	}

	if opts.UseSSHKey() {
		var err error
		d.sshKey, err = utils.SSHPrivateKeyPath(opts.SSHKeyPath)
		if err != nil {
			return nil, &types.ConfigurationError{Reason: "ssh key", Err: err}
		}
	}

	logger.Infof("[ssh-dialer] connecting to %s with user %s", d.sshAddress, d.username)
	c, err := d.Dial()
	if err != nil {
		return nil, &types.ConnectionError{Address: d.sshAddress, Err: err}
	}
	d.conn = c

	return d, nil
}

// Dial handshake with ssh address, bounding both the TCP connect and the SSH handshake by the timeout.
func (d *SSHDialer) Dial() (*ssh.Client, error) {
	hostKeyCallback, err := utils.HostKeyCallback(d.strictHostKey, d.knownHosts)
	if err != nil {
		return nil, err
	}
	cfg, err := utils.GetSSHConfig(d.username, d.sshKey, d.passphrase, d.password, d.timeout, hostKeyCallback)
	if err != nil {
		return nil, err
	}

	nd := net.Dialer{Timeout: d.timeout}
	conn, err := nd.Dial("tcp", d.sshAddress)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Now().Add(d.timeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, d.sshAddress, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

// Address returns the dialed host:port.
func (d *SSHDialer) Address() string {
	return d.sshAddress
}

// Verify runs `id -u` once and requires a numeric answer.
func (d *SSHDialer) Verify() error {
	if err := d.getUserID(); err != nil {
		return &types.ConnectionError{Address: d.sshAddress, Err: err}
	}
	d.logger.Debugf("[ssh-dialer] verified %s, remote uid %d", d.sshAddress, d.uid)
	return nil
}

func (d *SSHDialer) getUserID() error {
	if d.conn == nil {
		return errors.New("not connected")
	}
	session, err := d.conn.NewSession()
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	output, err := session.Output("id -u")
	if err != nil {
		return fmt.Errorf("failed to get current user id from remote host %s, %v", d.sshAddress, err)
	}
	// it should return a number with user id if ok
	d.uid, err = strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return fmt.Errorf("failed to parse uid output from remote host, output: %s, %v", string(output), err)
	}
	return nil
}

// Close closes the connection.
func (d *SSHDialer) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

func (d *SSHDialer) wrapCommands(cmd string) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf(scriptWrapper, cmd)))
}

// ExecuteCommands runs cmds as one sh script in a new session and returns stdout and stderr combined.
// A non-zero exit is a *types.RemoteCommandError, a broken connection a *types.ConnectionError.
func (d *SSHDialer) ExecuteCommands(cmds ...string) (string, error) {
	if d.conn == nil {
		return "", &types.ConnectionError{Address: d.sshAddress, Err: errors.New("not connected")}
	}
	session, err := d.conn.NewSession()
	if err != nil {
		return "", &types.ConnectionError{Address: d.sshAddress, Err: fmt.Errorf("open session: %w", err)}
	}
	defer func() { _ = session.Close() }()

	script := strings.Join(cmds, "\n")
	cmd := fmt.Sprintf("echo \"%s\" | base64 -d | sh -", d.wrapCommands(script))
	d.logger.Debugf("executing cmd: %s", script)

	output := bytes.NewBuffer([]byte{})
	var w io.Writer = output
	if d.Writer != nil {
		w = io.MultiWriter(output, d.Writer)
	}
	combinedOutput := singleWriter{b: w}
	session.Stderr = &combinedOutput
	session.Stdout = &combinedOutput
	err = session.Run(cmd)

	out := strings.ToValidUTF8(output.String(), "�")
	if err == nil {
		return out, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return out, &types.RemoteCommandError{Command: script, ExitCode: exitErr.ExitStatus(), Err: err}
	}
	var missingErr *ssh.ExitMissingError
	if errors.As(err, &missingErr) {
		return out, &types.RemoteCommandError{Command: script, ExitCode: -1, Err: err}
	}
	return out, &types.ConnectionError{Address: d.sshAddress, Err: err}
}

type singleWriter struct {
	b  io.Writer
	mu sync.Mutex
}

func (w *singleWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}
