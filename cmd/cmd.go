package cmd

import (
	"fmt"
	"os"

	"github.com/cnrancher/vmdemo/pkg/common"

	"github.com/morikuni/aec"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const ascIIStr = `
                      _
 __   ___ __ ___   __| | ___ _ __ ___   ___
 \ \ / / '_ ` + "`" + ` _ \ / _` + "`" + ` |/ _ \ '_ ` + "`" + ` _ \ / _ \
  \ V /| | | | | | (_| |  __/ | | | | | (_) |
   \_/ |_| |_| |_|\__,_|\___|_| |_| |_|\___/

`

var (
	cmd = &cobra.Command{
		Use:              "vmdemo",
		Short:            "vmdemo connects to a demo VM over SSH and runs follow-up actions on it",
		Long:             `vmdemo connects to one VM of the demo pool over SSH, then runs canned actions interactively or performs a one-shot login and local run.`,
		TraverseChildren: true,
		SilenceUsage:     true,
		SilenceErrors:    true,
	}
)

func init() {
	cobra.OnInitialize(initCfg)
	setHelpTemplate(cmd)
	cmd.PersistentFlags().BoolVarP(&common.Debug, "debug", "d", common.Debug, "Enable log debug level")
}

// Command root command.
func Command() *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		printASCII(cmd)
		return cmd.Help()
	}
	return cmd
}

func initCfg() {
	setEnvVars()
	common.InitLogger(logrus.StandardLogger())

	if err := os.MkdirAll(common.CfgPath, 0755); err != nil {
		logrus.Errorf("failed to create config dir %s, %v", common.CfgPath, err)
	}
}

func printASCII(cmd *cobra.Command) {
	fmt.Fprint(cmd.OutOrStdout(), aec.Apply(ascIIStr, aec.LightCyanF))
}

// setEnvVars reads settings that must be known before flags and config are parsed.
func setEnvVars() {
	if cfgEnv := os.Getenv(common.EnvPrefix + "_CONFIG"); cfgEnv != "" {
		common.CfgPath = cfgEnv
	}
}

func setHelpTemplate(cmd *cobra.Command) {
	t := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Global Environments:
  VMDEMO_CONFIG  Path to the cfg dir holding config.yaml, history and logs (default ~/.vmdemo)
  VMDEMO_<KEY>   Any config key, e.g. VMDEMO_IPS_FILE, VMDEMO_SSH_KEY_PATH, VMDEMO_CONN_TIMEOUT

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
	cmd.SetHelpTemplate(t)
}
