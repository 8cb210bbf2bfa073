package main

import (
	"os"

	"github.com/cnrancher/vmdemo/cmd"

	"github.com/sirupsen/logrus"
)

var (
	gitVersion   string
	gitCommit    string
	gitTreeState string
	buildDate    string
)

func main() {
	rootCmd := cmd.Command()
	rootCmd.AddCommand(cmd.CompletionCommand(), cmd.VersionCommand(gitVersion, gitCommit, gitTreeState, buildDate),
		cmd.InteractiveCommand(), cmd.OneshotCommand(), cmd.ListCommand(), cmd.TargetsCommand(),
		cmd.HistoryCommand(), cmd.LogsCommand())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorln(err)
		os.Exit(1)
	}
}
