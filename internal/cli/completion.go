package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/builder"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/schema"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for schemaflow.

To load completions:

Bash:
  $ source <(schemaflow completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ schemaflow completion bash > /etc/bash_completion.d/schemaflow
  # macOS:
  $ schemaflow completion bash > $(brew --prefix)/etc/bash_completion.d/schemaflow

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ schemaflow completion zsh > "${fpath[1]}/_schemaflow"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ schemaflow completion fish | source

  # To load completions for each session, execute once:
  $ schemaflow completion fish > ~/.config/fish/completions/schemaflow.fish

PowerShell:
  PS> schemaflow completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> schemaflow completion powershell > schemaflow.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeNodes completes the second argument of drag and group-drag with
// the node ids of the given kinds, read from the schema named by the first
// argument. Positions are irrelevant here, so nothing is loaded from the
// layout store.
func completeNodes(kinds ...diagram.NodeKind) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return nil, cobra.ShellCompDirectiveDefault
		case 1:
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		model, err := schema.ReadFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		g := builder.New(nil, nil).Build(ctx, model, nil).Graph
		var ids []cobra.Completion
		for _, k := range kinds {
			ids = append(ids, g.NodeIDs(k)...)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
