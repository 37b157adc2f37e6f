// Package cli implements the gdatamvn command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/analyze"
	"github.com/matzehuels/gdatamvn/pkg/buildinfo"
	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/config"
	"github.com/matzehuels/gdatamvn/pkg/fetch"
	"github.com/matzehuels/gdatamvn/pkg/pipeline"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "gdatamvn"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gdatamvn packages gdata-java-client jars for Maven repositories",
		Long: `gdatamvn downloads gdata-java-client distributions, analyzes the dependencies
between the bundled jars with JBoss Tattletale, and writes a Maven descriptor per
jar plus a deploy script, for both snapshot and release repositories.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.registerHooks()
		return nil
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML configuration file")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.pomsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Component Factories
// =============================================================================

// loadConfig reads the configuration named by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("Loaded configuration", "file", c.configPath, "work", cfg.WorkDir, "output", cfg.OutputDir)
	return cfg, nil
}

// newFetcher creates a fetcher that draws progress bars unless quiet.
func (c *CLI) newFetcher(cfg config.Config, quiet bool) *fetch.Fetcher {
	opts := []fetch.Option{fetch.WithLogger(c.Logger)}
	if !quiet {
		opts = append(opts, fetch.WithProgress(os.Stderr))
	}
	return fetch.New(cfg.Fetch(), opts...)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, f pipeline.Fetcher, refresh bool) (*pipeline.Runner, error) {
	mappings, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(f, pom.New(cfg.POM(), pom.WithLogger(c.Logger)), pipeline.Options{
		NewAnalyzer: func(jar string) pipeline.Analyzer {
			return analyze.New(cfg.Analyze(), jar, analyze.WithLogger(c.Logger))
		},
		Cache:   mappings,
		Keyer:   cache.NewScopedKeyer(nil, cfg.Maven.GroupID+":"),
		TTL:     cfg.Cache.TTL.Duration,
		Policy:  cfg.Policy(),
		Refresh: refresh,
		Logger:  c.Logger,
	}), nil
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	return cache.New(ctx, cfg.CacheOptions())
}
