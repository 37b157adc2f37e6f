package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/errors"
)

// completionShells maps a shell name to its cobra generator.
var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        func(r *cobra.Command, w io.Writer) error { return r.GenZshCompletion(w) },
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": func(r *cobra.Command, w io.Writer) error { return r.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: fmt.Sprintf(`Generate a completion script for the given shell and print it to stdout.

  $ source <(%[1]s completion bash)
  $ %[1]s completion zsh > "${fpath[1]}/_%[1]s"
  $ %[1]s completion fish > ~/.config/fish/completions/%[1]s.fish
  PS> %[1]s completion powershell | Out-String | Invoke-Expression`, appName),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), os.Stdout)
		},
	}
}
