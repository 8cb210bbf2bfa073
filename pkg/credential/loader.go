// Package credential resolves a VM index to its IP address and password from two line-indexed files.
package credential

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"
)

// Loader reads the IP file and the password file. Line i holds VM i+1.
type Loader struct {
	IPsFile       string
	PasswordsFile string
}

// NewLoader falls back to vm-ips.txt and vm-pws.txt in the working directory.
func NewLoader(ipsFile, passwordsFile string) *Loader {
	if ipsFile == "" {
		ipsFile = common.DefaultIPs
	}
	if passwordsFile == "" {
		passwordsFile = common.DefaultPWs
	}
	return &Loader{IPsFile: ipsFile, PasswordsFile: passwordsFile}
}

// ValidateIndex rejects indices outside the VM pool.
func ValidateIndex(index int) error {
	if index < common.MinVMIndex || index > common.MaxVMIndex {
		return &types.ConfigurationError{
			Reason: fmt.Sprintf("VM must be from %d to %d, got %d", common.MinVMIndex, common.MaxVMIndex, index),
			Err:    types.ErrInvalidVM,
		}
	}
	return nil
}

// ParseIndex parses user input into a validated VM index.
func ParseIndex(s string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &types.ConfigurationError{Reason: fmt.Sprintf("VM must be a number, got %q", s), Err: types.ErrInvalidVM}
	}
	return index, ValidateIndex(index)
}

// Load validates index before touching either file, then returns the VM at line index-1.
func (l *Loader) Load(index int) (*types.VM, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}
	ip, err := lineAt(l.IPsFile, index-1)
	if err != nil {
		return nil, err
	}
	password, err := lineAt(l.PasswordsFile, index-1)
	if err != nil {
		return nil, err
	}
	return &types.VM{Index: index, IP: ip, Password: password}, nil
}

// List returns every VM that has both an IP and a password entry.
func (l *Loader) List() ([]types.VM, error) {
	ips, err := readLines(l.IPsFile)
	if err != nil {
		return nil, err
	}
	passwords, err := readLines(l.PasswordsFile)
	if err != nil {
		return nil, err
	}

	vms := make([]types.VM, 0, len(ips))
	for i := 0; i < len(ips) && i < len(passwords) && i < common.MaxVMIndex; i++ {
		if ips[i] == "" || passwords[i] == "" {
			continue
		}
		vms = append(vms, types.VM{Index: i + 1, IP: ips[i], Password: passwords[i]})
	}
	return vms, nil
}

func lineAt(path string, offset int) (string, error) {
	lines, err := readLines(path)
	if err != nil {
		return "", err
	}
	if offset >= len(lines) {
		return "", &types.ConfigurationError{
			Reason: fmt.Sprintf("%s has %d entries, VM %d requested", path, len(lines), offset+1),
		}
	}
	if lines[offset] == "" {
		return "", &types.ConfigurationError{Reason: fmt.Sprintf("%s has an empty entry for VM %d", path, offset+1)}
	}
	return lines[offset], nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(utils.ExpandPath(path))
	if err != nil {
		return nil, &types.ConfigurationError{Reason: "read credential file", Err: err}
	}
	defer f.Close()

	lines := make([]string, 0, common.MaxVMIndex)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("read %s", path), Err: err}
	}
	return lines, nil
}
