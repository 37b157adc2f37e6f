package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/pipeline"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// runOptions holds flags for the run command.
type runOptions struct {
	output  string
	work    string
	refresh bool
	quiet   bool
}

// runCommand creates the run command for the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [versions...]",
		Short: "Fetch, analyze, and generate descriptors for distribution versions",
		Long: `Run the full pipeline for each distribution version: fetch the analyzer and the
distribution, analyze jar dependencies, and write snapshot and release descriptors
plus deploy scripts under the output directory.

Without arguments the versions from the configuration are processed.`,
		Example: `  # Process the configured versions
  gdatamvn run

  # Process one version into a custom directory
  gdatamvn run 1.41.1 -o out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVar(&opts.work, "work-dir", "", "work directory for downloads (overrides config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached dependency mappings")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide download progress bars and show a stage spinner instead")

	return cmd
}

func (c *CLI) runRun(cmd *cobra.Command, args []string, opts runOptions) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.OutputDir = opts.output
	}
	if opts.work != "" {
		cfg.WorkDir = opts.work
	}
	versions := cfg.Versions
	if len(args) > 0 {
		versions = args
	}
	for _, v := range versions {
		if err := errors.ValidateVersion(v); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, c.newFetcher(cfg, opts.quiet), opts.refresh)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	hooks := &stageHooks{logger: c.Logger}
	if opts.quiet {
		hooks.spinner = newSpinnerWithContext(ctx, "Starting")
		hooks.spinner.Start()
	}
	var results []pipeline.Result
	withStageHooks(hooks, func() {
		results, err = runner.Run(ctx, versions)
	})
	if hooks.spinner != nil {
		hooks.spinner.Stop()
	}
	for _, res := range results {
		printResult(res)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d versions", len(results)))
	return nil
}

// printResult prints the outcome of one version.
func printResult(res pipeline.Result) {
	printVersion(versionSummary{
		version:   res.Version,
		artifacts: res.Stats.Artifacts,
		edges:     res.Stats.Edges,
		cached:    res.CacheInfo.ParseHit,
		dirs:      map[pom.Mode]string{pom.Snapshot: res.SnapshotDir, pom.Release: res.ReleaseDir},
	})
}
