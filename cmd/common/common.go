package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/targets"
	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddConnectionFlags registers the flags shared by every command that reads the VM pool.
// Defaults live in viper so that config file and environment values are not shadowed.
func AddConnectionFlags(flags *pflag.FlagSet) {
	flags.String("user", "", "Remote login user (default \"416\")")
	flags.String("ips-file", "", "File with one VM IP per line (default \"vm-ips.txt\")")
	flags.String("passwords-file", "", "File with one VM password per line (default \"vm-pws.txt\")")
	flags.String("ssh-port", "", "SSH port of the VMs (default \"22\")")
	flags.String("ssh-key-path", "", "Authenticate with this private key instead of the VM password")
	flags.String("known-hosts", "", "known_hosts file used with --strict-host-key (default ~/.ssh/known_hosts)")
	flags.Bool("strict-host-key", false, "Verify VM host keys against known_hosts")
	flags.Duration("conn-timeout", 0, "Timeout for establishing the SSH connection (default 5s)")
	flags.String("workdir", "", "Project directory on the VM, relative to the login directory")
	flags.Int("clean-port", 0, "Port whose owning process is killed by the clean action (default 12345)")
	flags.String("targets-file", "", "YAML file with additional run targets")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user", common.DefaultUser)
	v.SetDefault("ips-file", common.DefaultIPs)
	v.SetDefault("passwords-file", common.DefaultPWs)
	v.SetDefault("ssh-port", common.DefaultPort)
	v.SetDefault("known-hosts", filepath.Join(utils.UserHome(), ".ssh", "known_hosts"))
	v.SetDefault("strict-host-key", false)
	v.SetDefault("conn-timeout", common.ConnectTimeout)
	v.SetDefault("workdir", common.DefaultWorkDir)
	v.SetDefault("clean-port", common.CleanPort)
	v.SetDefault("history", true)
}

// LoadOptions merges defaults, <cfg>/config.yaml, VMDEMO_* environment variables and flags, in that order.
func LoadOptions(cmd *cobra.Command) (*types.Options, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(filepath.Join(common.CfgPath, common.ConfigFile))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &types.ConfigurationError{Reason: "read config file", Err: err}
	}

	v.SetEnvPrefix(common.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	opts := &types.Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, &types.ConfigurationError{Reason: "decode options", Err: err}
	}
	return opts, nil
}

// LoadTargets returns the default targets, merged with targets-file when configured.
func LoadTargets(opts *types.Options) (*targets.Table, error) {
	if opts.TargetsFile == "" {
		return targets.New(nil)
	}
	table, err := targets.Load(opts.TargetsFile)
	if err != nil {
		return nil, &types.ConfigurationError{Reason: "targets file", Err: err}
	}
	return table, nil
}

// OpenHistory opens the sqlite history store once per process.
func OpenHistory(cmd *cobra.Command) (*common.Store, error) {
	if common.DefaultDB == nil {
		if err := common.InitStorage(cmd.Context()); err != nil {
			return nil, err
		}
	}
	return common.DefaultDB, nil
}

// NewPrompter uses survey when the command reads a terminal and line prompts otherwise.
func NewPrompter(cmd *cobra.Command) utils.Prompter {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if fin, ok := in.(*os.File); ok {
		if fout, ok := out.(*os.File); ok {
			return utils.NewPrompter(fin, fout)
		}
	}
	return utils.NewLinePrompter(in, out)
}

// NewVMLogger returns the per-VM logger with the VM password masked.
func NewVMLogger(vm *types.VM) (*logrus.Logger, *os.File, error) {
	return common.NewVMLogger(vm.Index, vm.Password)
}
