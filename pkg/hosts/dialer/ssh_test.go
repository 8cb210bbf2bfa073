package dialer

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cnrancher/vmdemo/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "416"
	testPassword = "pw2"
)

type execHandler func(cmd string) (stdout, stderr string, code uint32)

// decodeScript reverses the base64 wrapping done by SSHDialer.ExecuteCommands.
func decodeScript(cmd string) (string, bool) {
	if !strings.HasPrefix(cmd, `echo "`) || !strings.HasSuffix(cmd, `" | base64 -d | sh -`) {
		return "", false
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(cmd, `echo "`), `" | base64 -d | sh -`)
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func defaultHandler(cmd string) (string, string, uint32) {
	if cmd == "id -u" {
		return "1000\n", "", 0
	}
	script, ok := decodeScript(cmd)
	if !ok {
		return "", "sh: not wrapped\n", 127
	}
	if strings.Contains(script, "exit 3") {
		return "partial\n", "boom\n", 3
	}
	return script, "", 0
}

func startTestServer(t *testing.T, handler execHandler) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, cfg, handler)
		}
	}()
	return ln.Addr().String()
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig, handler execHandler) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		_ = nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func(ch ssh.Channel, requests <-chan *ssh.Request) {
			for req := range requests {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				_ = ssh.Unmarshal(req.Payload, &payload)
				_ = req.Reply(true, nil)

				stdout, stderr, code := handler(payload.Command)
				_, _ = io.WriteString(ch, stdout)
				_, _ = io.WriteString(ch.Stderr(), stderr)
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
				_ = ch.Close()
				return
			}
		}(ch, requests)
	}
}

func testVM(t *testing.T, addr, password string) (*types.VM, *types.Options) {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return &types.VM{Index: 2, IP: host, Password: password},
		&types.Options{User: testUser, SSHPort: port, ConnTimeout: 2 * time.Second}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewSSHDialerVerify(t *testing.T) {
	addr := startTestServer(t, defaultHandler)
	vm, opts := testVM(t, addr, testPassword)

	d, err := NewSSHDialer(vm, opts, quietLogger())
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, addr, d.Address())
	require.NoError(t, d.Verify())
	assert.Equal(t, 1000, d.uid)
}

func TestNewSSHDialerAuthFailure(t *testing.T) {
	addr := startTestServer(t, defaultHandler)
	vm, opts := testVM(t, addr, "wrong")

	_, err := NewSSHDialer(vm, opts, quietLogger())
	require.Error(t, err)

	var connErr *types.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, addr, connErr.Address)
	assert.Contains(t, err.Error(), addr)
}

func TestNewSSHDialerUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	vm, opts := testVM(t, addr, testPassword)
	_, err = NewSSHDialer(vm, opts, quietLogger())

	var connErr *types.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestNewSSHDialerHandshakeTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	// accept and stay silent so the handshake never completes
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	vm, opts := testVM(t, ln.Addr().String(), testPassword)
	opts.ConnTimeout = 200 * time.Millisecond

	start := time.Now()
	_, err = NewSSHDialer(vm, opts, quietLogger())
	var connErr *types.ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewSSHDialerRequiresIP(t *testing.T) {
	_, err := NewSSHDialer(&types.VM{Index: 1}, &types.Options{}, quietLogger())
	assert.Error(t, err)
}

func TestNewSSHDialerMissingKey(t *testing.T) {
	vm := &types.VM{Index: 1, IP: "127.0.0.1"}
	_, err := NewSSHDialer(vm, &types.Options{SSHKeyPath: "/nonexistent/id_rsa"}, quietLogger())

	var cfgErr *types.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestExecuteCommands(t *testing.T) {
	addr := startTestServer(t, defaultHandler)
	vm, opts := testVM(t, addr, testPassword)

	d, err := NewSSHDialer(vm, opts, quietLogger())
	require.NoError(t, err)
	defer d.Close()

	tee := &bytes.Buffer{}
	d.Writer = tee

	out, err := d.ExecuteCommands("cd proj && git pull")
	require.NoError(t, err)
	assert.Contains(t, out, "set -e\ncd proj && git pull")
	assert.Equal(t, out, tee.String())
}

func TestExecuteCommandsNonZeroExit(t *testing.T) {
	addr := startTestServer(t, defaultHandler)
	vm, opts := testVM(t, addr, testPassword)

	d, err := NewSSHDialer(vm, opts, quietLogger())
	require.NoError(t, err)
	defer d.Close()

	out, err := d.ExecuteCommands("echo partial", "exit 3")
	require.Error(t, err)
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "boom")

	var rce *types.RemoteCommandError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, 3, rce.ExitCode)
	assert.Equal(t, "echo partial\nexit 3", rce.Command)
}

func TestExecuteCommandsAfterClose(t *testing.T) {
	addr := startTestServer(t, defaultHandler)
	vm, opts := testVM(t, addr, testPassword)

	d, err := NewSSHDialer(vm, opts, quietLogger())
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.ExecuteCommands("true")
	var connErr *types.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}
