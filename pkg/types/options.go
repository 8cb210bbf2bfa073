package types

import "time"

// Options holds the merged configuration from config file, environment and flags.
type Options struct {
	User             string            `json:"user" yaml:"user" mapstructure:"user"`
	IPsFile          string            `json:"ips-file" yaml:"ips-file" mapstructure:"ips-file"`
	PasswordsFile    string            `json:"passwords-file" yaml:"passwords-file" mapstructure:"passwords-file"`
	SSHPort          string            `json:"ssh-port" yaml:"ssh-port" mapstructure:"ssh-port"`
	SSHKeyPath       string            `json:"ssh-key-path,omitempty" yaml:"ssh-key-path,omitempty" mapstructure:"ssh-key-path"`
	SSHKeyPassphrase string            `json:"-" yaml:"ssh-key-passphrase,omitempty" mapstructure:"ssh-key-passphrase"`
	KnownHosts       string            `json:"known-hosts" yaml:"known-hosts" mapstructure:"known-hosts"`
	StrictHostKey    bool              `json:"strict-host-key" yaml:"strict-host-key" mapstructure:"strict-host-key"`
	ConnTimeout      time.Duration     `json:"conn-timeout" yaml:"conn-timeout" mapstructure:"conn-timeout"`
	WorkDir          string            `json:"workdir" yaml:"workdir" mapstructure:"workdir"`
	CleanPort        int               `json:"clean-port" yaml:"clean-port" mapstructure:"clean-port"`
	TargetsFile      string            `json:"targets-file,omitempty" yaml:"targets-file,omitempty" mapstructure:"targets-file"`
	Env              map[string]string `json:"env,omitempty" yaml:"env,omitempty" mapstructure:"env"`
	History          bool              `json:"history" yaml:"history" mapstructure:"history"`
}

// UseSSHKey reports whether key authentication replaces password authentication.
func (o *Options) UseSSHKey() bool {
	return o.SSHKeyPath != ""
}
