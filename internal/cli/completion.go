package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Scripts go to the
// command's output so they can be piped into a shell or a file.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for beltwright.

  $ source <(beltwright completion bash)
  $ beltwright completion zsh > "${fpath[1]}/_beltwright"
  $ beltwright completion fish > ~/.config/fish/completions/beltwright.fish
  PS> beltwright completion powershell | Out-String | Invoke-Expression

Circuit file arguments complete to *.json documents.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// circuitFileCompletion completes circuit document arguments.
func circuitFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
