package cmd

import (
	"github.com/spf13/cobra"
)

const exampleStr = `
  To load completions:

  Bash:

  $ source <(vmdemo completion bash)

  # To load completions for each session, execute once:
  Linux:
    $ vmdemo completion bash > /etc/bash_completion.d/vmdemo
  MacOS:
    $ vmdemo completion bash > /usr/local/etc/bash_completion.d/vmdemo

  Zsh:

  # If shell completion is not already enabled in your environment you will need
  # to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ vmdemo completion zsh > "${fpath[1]}/_vmdemo"

  # You will need to start a new shell for this setup to take effect.

  Fish:

  $ vmdemo completion fish | source

  # To load completions for each session, execute once:
  $ vmdemo completion fish > ~/.config/fish/completions/vmdemo.fish
`

// CompletionCommand used for command completion.
func CompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate completion script",
		Example:               exampleStr,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				// v2 carries descriptions and honors ValidArgsFunction, v1 is deprecated upstream
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return cmd
}
