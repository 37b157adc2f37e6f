package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// pomsCommand creates the poms command that generates descriptors from an
// existing analyzer report.
func (c *CLI) pomsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "poms <version> <dotfile> <jardir>",
		Short: "Generate descriptors and deploy scripts from an analyzer report",
		Long: `Generate snapshot and release descriptors plus deploy scripts for a distribution
version from an analyzer report produced earlier. jardir is the directory the
deploy script takes the jars from.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			version, dotFile, jarDir := args[0], args[1], args[2]
			if err := errors.ValidateVersion(version); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.OutputDir = output
			}
			runner, err := c.newRunner(ctx, cfg, nil, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			m, hit, err := runner.ParseFile(ctx, dotFile)
			if err != nil {
				return err
			}
			snapshot, release, err := runner.Generate(ctx, version, m, jarDir)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Generated %d descriptors per mode", len(m)))

			printVersion(versionSummary{
				version:   version,
				artifacts: len(m),
				edges:     m.EdgeCount(),
				cached:    hit,
				dirs:      map[pom.Mode]string{pom.Snapshot: snapshot, pom.Release: release},
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (overrides config)")
	return cmd
}
