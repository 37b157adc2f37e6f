package cli

import (
	"github.com/spf13/cobra"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "fetch <version>",
		Short: "Download and unpack the analyzer and a distribution",
		Long: `Download the JBoss Tattletale analyzer and the given gdata-java-client
distribution into the work directory. Already present files are reused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			f := c.newFetcher(cfg, quiet)

			jar, err := f.Analyzer(ctx, "")
			if err != nil {
				return err
			}
			libs, err := f.Distribution(ctx, args[0])
			if err != nil {
				return err
			}

			printSuccess("Fetched gdata %s", StyleHighlight.Render(args[0]))
			printKeyValue("analyzer", jar)
			printKeyValue("jars", libs)
			printNextStep("Generate descriptors", "gdatamvn run "+args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide download progress bars")
	return cmd
}
