package cmd

import (
	"strings"

	"github.com/cnrancher/vmdemo/cmd/common"

	"github.com/spf13/cobra"
)

var (
	targetsCmd = &cobra.Command{
		Use:     "targets",
		Short:   "Display the targets accepted by run and oneshot --file",
		Example: `  vmdemo targets --targets-file ./targets.yaml`,
	}
)

func init() {
	targetsCmd.Flags().String("targets-file", "", "YAML file with additional run targets")
}

func TargetsCommand() *cobra.Command {
	targetsCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		opts, err := common.LoadOptions(cmd)
		if err != nil {
			return err
		}
		t, err := common.LoadTargets(opts)
		if err != nil {
			return err
		}

		table := newTable(cmd.OutOrStdout(), []string{"Name", "Path", "Args"})
		for _, target := range t.List() {
			table.Append([]string{target.Name, target.Path, strings.Join(target.Args, " ")})
		}
		table.Render()
		return nil
	}
	return targetsCmd
}
