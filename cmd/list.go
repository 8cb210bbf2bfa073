package cmd

import (
	"io"
	"strconv"

	"github.com/cnrancher/vmdemo/cmd/common"
	"github.com/cnrancher/vmdemo/pkg/credential"
	"github.com/cnrancher/vmdemo/pkg/types"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Display the VM pool",
		Example: `  vmdemo list`,
	}
)

func init() {
	common.AddConnectionFlags(listCmd.Flags())
}

func ListCommand() *cobra.Command {
	listCmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := common.LoadOptions(cmd)
		if err != nil {
			return err
		}
		vms, err := credential.NewLoader(opts.IPsFile, opts.PasswordsFile).List()
		if err != nil {
			return err
		}
		listVMs(cmd.OutOrStdout(), vms, opts)
		return nil
	}
	return listCmd
}

func listVMs(w io.Writer, vms []types.VM, opts *types.Options) {
	table := newTable(w, []string{"VM", "IP", "Address", "User", "Password"})
	for _, vm := range vms {
		table.Append([]string{
			strconv.Itoa(vm.Index),
			vm.IP,
			vm.Address(opts.SSHPort),
			opts.User,
			"******",
		})
	}
	table.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}
