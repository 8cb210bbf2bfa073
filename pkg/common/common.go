package common

import (
	"os"
	"path/filepath"
	"time"
)

const (
	ConfigFile     = "config.yaml"
	DBFile         = "vmdemo.db"
	LogFile        = "log"
	EnvPrefix      = "VMDEMO"
	MinVMIndex     = 1
	MaxVMIndex     = 10
	DefaultUser    = "416"
	DefaultPort    = "22"
	DefaultIPs     = "vm-ips.txt"
	DefaultPWs     = "vm-pws.txt"
	DefaultKey     = "~/.ssh/id_rsa"
	CleanPort      = 12345
	DefaultWorkDir = "proj2_g4w8_g6y9a_i6y8_o5z8"
)

var (
	Debug          = false
	CfgPath        = filepath.Join(userHome(), ".vmdemo")
	ConnectTimeout = 5 * time.Second
	// ToolchainEnv is exported on the remote side for the run action only.
	ToolchainEnv = map[string]string{
		"GOPATH": "$HOME/go",
		"PATH":   "$PATH:/usr/local/go/bin:$HOME/go/bin",
	}
)

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}
