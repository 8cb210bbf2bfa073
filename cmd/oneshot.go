package cmd

import (
	"github.com/cnrancher/vmdemo/cmd/common"
	"github.com/cnrancher/vmdemo/pkg/credential"
	"github.com/cnrancher/vmdemo/pkg/oneshot"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	oneshotCmd = &cobra.Command{
		Use:   "oneshot",
		Short: "Log into a VM with the local ssh client, then run a known target locally",
		Example: `  vmdemo oneshot --vm 3 --file server
  vmdemo oneshot -v 1 -f main`,
	}

	oVM   = ""
	oFile = ""
)

func init() {
	oneshotCmd.Flags().StringVarP(&oVM, "vm", "v", oVM, "Index of the VM to log into, from 1 to 10")
	oneshotCmd.Flags().StringVarP(&oFile, "file", "f", oFile, "Name of the known target to run locally")
	_ = oneshotCmd.MarkFlagRequired("vm")
	_ = oneshotCmd.MarkFlagRequired("file")
	common.AddConnectionFlags(oneshotCmd.Flags())
}

// OneshotCommand requires sshpass and ssh on the PATH.
func OneshotCommand() *cobra.Command {
	oneshotCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		opts, err := common.LoadOptions(cmd)
		if err != nil {
			return err
		}
		table, err := common.LoadTargets(opts)
		if err != nil {
			return err
		}
		loader := credential.NewLoader(opts.IPsFile, opts.PasswordsFile)
		return oneshot.NewRunner(loader, table, opts, logrus.StandardLogger()).Run(oVM, oFile)
	}
	return oneshotCmd
}
