package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage downloads and cached dependency mappings",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached dependency mappings",
		Long: `Clear cached dependency mappings. With --all, also delete the work directory
holding downloaded archives, extracted distributions, and analyzer reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if cfg.Cache.Backend == cache.BackendFile {
				fc, err := cache.NewFileCache(cfg.Cache.Dir)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "open cache")
				}
				count, err := fc.Clear()
				if err != nil {
					return errors.Wrap(errors.ErrCodeWrite, err, "clear cache")
				}
				printSuccess("Cleared %d cached mappings", count)
				printDetail("Directory: %s", fc.Dir())
			} else {
				printWarning("The %s cache backend expires entries by TTL; nothing to clear", cfg.Cache.Backend)
			}

			if !all {
				return nil
			}
			if _, err := os.Stat(cfg.WorkDir); os.IsNotExist(err) {
				printInfo("Work directory is empty")
				return nil
			}
			if err := os.RemoveAll(cfg.WorkDir); err != nil {
				return errors.Wrap(errors.ErrCodeWrite, err, "remove %s", cfg.WorkDir)
			}
			printSuccess("Removed work directory")
			printDetail("Directory: %s", cfg.WorkDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also delete downloads and analyzer output")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the work and cache directory paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.WorkDir)
			if cfg.Cache.Backend == cache.BackendFile {
				fmt.Println(cfg.Cache.Dir)
			}
			return nil
		},
	}
}
