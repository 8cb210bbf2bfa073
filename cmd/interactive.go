package cmd

import (
	"fmt"

	"github.com/cnrancher/vmdemo/cmd/common"
	"github.com/cnrancher/vmdemo/pkg/credential"
	"github.com/cnrancher/vmdemo/pkg/dispatcher"
	"github.com/cnrancher/vmdemo/pkg/hosts/dialer"
	"github.com/cnrancher/vmdemo/pkg/utils"

	"github.com/spf13/cobra"
)

const vmPrompt = "Which VM would you like to connect to? (1-10)"

var (
	interactiveCmd = &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Connect to a VM and run follow-up actions on it",
		Example: `  vmdemo interactive
  vmdemo interactive --vm 3
  vmdemo interactive --vm 3 --ssh-key-path ~/.ssh/id_rsa`,
	}

	iVM = ""
)

func init() {
	interactiveCmd.Flags().StringVarP(&iVM, "vm", "v", iVM, "Index of the VM to connect to, from 1 to 10 (prompted when empty)")
	common.AddConnectionFlags(interactiveCmd.Flags())
}

// InteractiveCommand connects once and loops over actions until exit.
func InteractiveCommand() *cobra.Command {
	interactiveCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runInteractive(cmd)
	}
	return interactiveCmd
}

func runInteractive(cmd *cobra.Command) error {
	opts, err := common.LoadOptions(cmd)
	if err != nil {
		return err
	}
	table, err := common.LoadTargets(opts)
	if err != nil {
		return err
	}

	prompter := common.NewPrompter(cmd)
	input := iVM
	if input == "" {
		if input, err = prompter.Ask(vmPrompt); err != nil {
			return err
		}
	}
	index, err := credential.ParseIndex(input)
	if err != nil {
		return err
	}
	vm, err := credential.NewLoader(opts.IPsFile, opts.PasswordsFile).Load(index)
	if err != nil {
		return err
	}

	logger, logFile, err := common.NewVMLogger(vm)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	s := utils.NewSpinner(fmt.Sprintf("Connecting to %s ", vm), cmd.ErrOrStderr())
	s.Start()
	d, err := dialer.NewSSHDialer(vm, opts, logger)
	if err == nil {
		if err = d.Verify(); err != nil {
			_ = d.Close()
		}
	}
	if err != nil {
		s.FinalMSG = fmt.Sprintf("Connecting to %s [Failed]\n", vm)
		s.Stop()
		return err
	}
	s.Stop()
	defer func() { _ = d.Close() }()
	d.Writer = logFile

	disp, err := dispatcher.New(vm, d, table, prompter, cmd.OutOrStdout(), opts)
	if err != nil {
		return err
	}
	disp.Logger = logger
	if opts.History {
		if store, err := common.OpenHistory(cmd); err != nil {
			logger.Warnf("command history is disabled: %v", err)
		} else {
			disp.Recorder = store
		}
	}

	return disp.Run()
}
