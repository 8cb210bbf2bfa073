package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHPrivateKeyPath reads the private key at sshKeyPath, expanding a leading "~/".
func SSHPrivateKeyPath(sshKeyPath string) (string, error) {
	buff, err := os.ReadFile(ExpandPath(sshKeyPath))
	if err != nil {
		return "", fmt.Errorf("error while reading SSH key file: %v", err)
	}
	return string(buff), nil
}

// GetSSHConfig builds the client config. A non-empty private key selects key
// authentication, otherwise the password is used. Only one method is offered.
func GetSSHConfig(username, sshPrivateKeyString, passphrase, password string, timeout time.Duration,
	hostKeyCallback ssh.HostKeyCallback) (*ssh.ClientConfig, error) {
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	config := &ssh.ClientConfig{
		User:            username,
		Timeout:         timeout,
		HostKeyCallback: hostKeyCallback,
	}

	if sshPrivateKeyString == "" {
		if password == "" {
			return config, errors.New("no password or private key provided")
		}
		config.Auth = append(config.Auth, ssh.Password(password))
		return config, nil
	}

	signer, err := parsePrivateKey(sshPrivateKeyString, passphrase)
	if err != nil {
		return config, err
	}
	config.Auth = append(config.Auth, ssh.PublicKeys(signer))

	return config, nil
}

// HostKeyCallback returns a known_hosts verifier when strict, otherwise accepts any host key.
func HostKeyCallback(strict bool, knownHostsPath string) (ssh.HostKeyCallback, error) {
	if !strict {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := ExpandPath(knownHostsPath)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled", path)
	}
	return knownhosts.New(path)
}

func parsePrivateKey(keyBuff, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase([]byte(keyBuff), []byte(passphrase))
	}
	signer, err := ssh.ParsePrivateKey([]byte(keyBuff))
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return nil, errors.New("private key is encrypted; set ssh-key-passphrase or VMDEMO_SSH_KEY_PASSPHRASE")
	}
	return signer, err
}
