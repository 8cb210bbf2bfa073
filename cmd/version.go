package cmd

import (
	"fmt"
	"runtime"

	"github.com/cnrancher/vmdemo/pkg/types"

	"github.com/spf13/cobra"
)

var (
	versionCmd = &cobra.Command{
		Use:     "version",
		Short:   "Display vmdemo version",
		Example: `  vmdemo version`,
	}

	short = false
)

func init() {
	versionCmd.Flags().BoolVarP(&short, "short", "s", short, "Print just the version number")
}

// VersionCommand returns version information.
func VersionCommand(gitVersion, gitCommit, gitTreeState, buildDate string) *cobra.Command {
	version := types.VersionInfo{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	versionCmd.Run = func(cmd *cobra.Command, _ []string) {
		if short {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version.Short())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version.String())
		}
	}

	return versionCmd
}
