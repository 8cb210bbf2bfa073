package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/cnrancher/vmdemo/pkg/common"
	"github.com/cnrancher/vmdemo/pkg/credential"

	"github.com/spf13/cobra"
)

var (
	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "Display the log of a VM's interactive sessions",
		Example: `  vmdemo logs --vm 3
  vmdemo logs --vm 3 --follow`,
	}

	lVM     = 0
	lFollow = false
)

func init() {
	logsCmd.Flags().IntVarP(&lVM, "vm", "v", lVM, "Index of the VM, from 1 to 10")
	logsCmd.Flags().BoolVarP(&lFollow, "follow", "f", lFollow, "Keep the log open and print new lines")
	_ = logsCmd.MarkFlagRequired("vm")
}

func LogsCommand() *cobra.Command {
	logsCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := credential.ValidateIndex(lVM); err != nil {
			return err
		}
		t, err := common.NewTailLog(common.GetVMLogFilePath(lVM), lFollow)
		if err != nil {
			return fmt.Errorf("no log for vm %d: %w", lVM, err)
		}
		defer common.CloseLog(t)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-t.Lines:
				if !ok {
					return nil
				}
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(out, line.Text)
			}
		}
	}
	return logsCmd
}
