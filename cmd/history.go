package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cnrancher/vmdemo/cmd/common"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var (
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Display remote commands run by interactive sessions",
		Example: `  vmdemo history
  vmdemo history --vm 3 --limit 5`,
	}

	hVM    = 0
	hLimit = 20
)

func init() {
	historyCmd.Flags().IntVarP(&hVM, "vm", "v", hVM, "Only show commands run on this VM (0 for all)")
	historyCmd.Flags().IntVarP(&hLimit, "limit", "n", hLimit, "Maximum number of entries, newest first")
}

func HistoryCommand() *cobra.Command {
	historyCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		store, err := common.OpenHistory(cmd)
		if err != nil {
			return err
		}
		entries, err := store.ListHistory(hVM, hLimit)
		if err != nil {
			return err
		}

		table := newTable(cmd.OutOrStdout(), []string{"ID", "VM", "Host", "Action", "Command", "Exit", "Age"})
		for _, h := range entries {
			table.Append([]string{
				strconv.Itoa(h.ID),
				strconv.Itoa(h.VM),
				h.Host,
				h.Action,
				summarize(h.Command),
				strconv.Itoa(h.ExitCode),
				fmt.Sprintf("%s ago", units.HumanDuration(time.Since(h.CreatedAt))),
			})
		}
		table.Render()
		return nil
	}
	return historyCmd
}

// summarize keeps the last line of a multi-line script, where the action's command is.
func summarize(command string) string {
	lines := strings.Split(strings.TrimSpace(command), "\n")
	last := lines[len(lines)-1]
	if len(lines) > 1 {
		last = "... " + last
	}
	if len(last) > 60 {
		last = last[:57] + "..."
	}
	return last
}
